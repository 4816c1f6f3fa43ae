package mock

import (
	"context"
	"strings"
	"testing"

	"pet-companion-chat/internal/domain/chat"
)

func TestComplete_EchoesUserInput(t *testing.T) {
	prompt := chat.BuildRoleplayPrompt(chat.PromptInput{UserInput: "want to play?", Species: "Pichu", Friendship: 50})

	reply, err := New().Complete(context.Background(), chat.RequestMessages("shy", prompt))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.Contains(reply, `"want to play?"`) {
		t.Fatalf("expected reply to quote the user input, got %q", reply)
	}
}

func TestComplete_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Complete(ctx, nil); err == nil {
		t.Fatalf("expected error on canceled context")
	}
}
