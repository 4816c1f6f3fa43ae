package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-companion-chat/internal/domain/trainers"
)

func TestTrainerRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewTrainerRepo()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	created, err := repo.Create(ctx, trainers.Trainer{
		ID:        "misty",
		Pets:      []trainers.Pet{trainers.NewPet("Togepi", now)},
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.Pets) != 1 || created.Pets[0].ID == "" {
		t.Fatalf("expected pet with assigned id, got %+v", created.Pets)
	}

	if _, err := repo.Create(ctx, trainers.Trainer{ID: "misty"}); !errors.Is(err, trainers.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	withTwo, err := repo.AddPet(ctx, "misty", trainers.NewPet("Psyduck", now))
	if err != nil {
		t.Fatalf("add pet: %v", err)
	}
	if len(withTwo.Pets) != 2 || withTwo.Pets[1].Name != "Psyduck" {
		t.Fatalf("unexpected pets after add: %+v", withTwo.Pets)
	}

	p := withTwo.Pets[0]
	p.Friendship = 77
	evaluated := now.Add(time.Hour)
	p.LastEvaluated = &evaluated
	updated, err := repo.UpdatePet(ctx, "misty", p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := updated.FindPet(p.ID); got.Friendship != 77 || got.LastEvaluated == nil {
		t.Fatalf("update not applied: %+v", got)
	}

	// el store no comparte punteros con quien llama
	evaluated = evaluated.Add(24 * time.Hour)
	again, _ := repo.Get(ctx, "misty")
	if got, _ := again.FindPet(p.ID); !got.LastEvaluated.Equal(now.Add(time.Hour)) {
		t.Fatalf("stored pet was mutated from outside: %v", got.LastEvaluated)
	}

	if err := repo.RemovePet(ctx, "misty", p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.RemovePet(ctx, "misty", p.ID); err != nil {
		t.Fatalf("remove must be idempotent: %v", err)
	}
	after, _ := repo.Get(ctx, "misty")
	if len(after.Pets) != 1 || after.Pets[0].Name != "Psyduck" {
		t.Fatalf("unexpected pets after remove: %+v", after.Pets)
	}

	if err := repo.Delete(ctx, "misty"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "misty"); !errors.Is(err, trainers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestTrainerRepo_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewTrainerRepo()

	if _, err := repo.AddPet(ctx, "ghost", trainers.Pet{Name: "x"}); !errors.Is(err, trainers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.RemovePet(ctx, "ghost", "p"); !errors.Is(err, trainers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	_, _ = repo.Create(ctx, trainers.Trainer{ID: "brock"})
	if _, err := repo.UpdatePet(ctx, "brock", trainers.Pet{ID: "missing", Name: "Onix"}); !errors.Is(err, trainers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing pet, got %v", err)
	}
}
