package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"pet-companion-chat/internal/domain/trainers"
)

func TestLinePrompter_Ask(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader("\n  Pikachu  \nlast"), &out)
	ctx := context.Background()

	got, err := p.TrainerName(ctx, "ash", "We couldn't find that trainer. Please create one.")
	if err != nil || got != "ash" {
		t.Fatalf("blank answer must keep the suggestion, got %q err=%v", got, err)
	}
	if !strings.Contains(out.String(), "! We couldn't find that trainer. Please create one.\nTrainer name [ash]: ") {
		t.Fatalf("unexpected prompt output %q", out.String())
	}

	got, err = p.PetName(ctx, "", "")
	if err != nil || got != "Pikachu" {
		t.Fatalf("expected trimmed answer, got %q err=%v", got, err)
	}

	// texto final sin salto de línea
	got, err = p.PetName(ctx, "", "")
	if err != nil || got != "last" {
		t.Fatalf("expected trailing line, got %q err=%v", got, err)
	}

	if _, err := p.PetName(ctx, "", ""); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestLinePrompter_CanceledContext(t *testing.T) {
	p := newLinePrompter(strings.NewReader("ash\n"), io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.TrainerName(ctx, "", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if err := p.RunAway(ctx, "Sparky"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLinePrompter_RunAway(t *testing.T) {
	var out bytes.Buffer
	p := newLinePrompter(strings.NewReader(""), &out)
	if err := p.RunAway(context.Background(), "Sparky"); err != nil {
		t.Fatalf("run away: %v", err)
	}
	if out.String() != "Sparky has ran away.\n" {
		t.Fatalf("unexpected notice %q", out.String())
	}
}

func TestNameCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "trainer")
	c := newNameCache(path)

	if got := c.Load(); got != "" {
		t.Fatalf("empty cache must load as blank, got %q", got)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("clearing a missing cache: %v", err)
	}

	if err := c.Save("  ash "); err != nil {
		t.Fatalf("save: %v", err)
	}
	if got := c.Load(); got != "ash" {
		t.Fatalf("expected ash, got %q", got)
	}

	if err := c.Save(""); err != nil {
		t.Fatalf("save blank: %v", err)
	}
	if got := c.Load(); got != "" {
		t.Fatalf("blank save must clear, got %q", got)
	}
}

func TestStatusLine(t *testing.T) {
	cases := []struct {
		pet  trainers.Pet
		want string
	}{
		{trainers.Pet{Name: "Sparky", Stage: 1, Friendship: 50, TalkingStreak: 2}, "Sparky the Pichu | friendship 50 (medium) | streak 2/7"},
		{trainers.Pet{Name: "Volt", Stage: 3, Friendship: 90}, "Volt the Raichu | friendship 90 (high)"},
		{trainers.Pet{Name: "Odd", Stage: 9, Friendship: 10}, "Odd the Companion | friendship 10 (low)"},
	}
	for _, tc := range cases {
		if got := statusLine(tc.pet); got != tc.want {
			t.Fatalf("statusLine(%+v) = %q, want %q", tc.pet, got, tc.want)
		}
	}
}
