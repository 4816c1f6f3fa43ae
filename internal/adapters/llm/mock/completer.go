// Package mock responde sin proveedor externo. Se usa cuando no hay DEEPSEEK_API_KEY.
package mock

import (
	"context"
	"fmt"
	"strings"

	"pet-companion-chat/internal/domain/chat"
)

type Completer struct{}

func New() *Completer {
	return &Completer{}
}

func (m *Completer) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == chat.RoleUser {
			last = messages[i].Content
			break
		}
	}

	// Si es un prompt de roleplay, responder al texto del usuario y no al prompt entero.
	for _, line := range strings.Split(last, "\n") {
		if rest, ok := strings.CutPrefix(line, "User Input: "); ok {
			last = rest
			break
		}
	}

	last = strings.TrimSpace(last)
	if last == "" {
		return "Pika?", nil
	}
	return fmt.Sprintf("Pika pika! You said %q. Tell me more!", last), nil
}
