package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pet-companion-chat/internal/domain/trainers"
)

func TestToPetDoc_IDs(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))

	pd, err := toPetDoc(trainers.NewPet("Eevee", now))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if pd.ID.IsZero() {
		t.Fatalf("expected a generated ObjectID")
	}
	if pd.LastChatted.Location() != time.UTC {
		t.Fatalf("expected UTC timestamps, got %v", pd.LastChatted.Location())
	}

	oid := primitive.NewObjectID()
	pd, err = toPetDoc(trainers.Pet{ID: oid.Hex(), Name: "Eevee"})
	if err != nil || pd.ID != oid {
		t.Fatalf("expected id to be kept, got %v err=%v", pd.ID, err)
	}

	if _, err := toPetDoc(trainers.Pet{ID: "not-an-oid", Name: "Eevee"}); !errors.Is(err, trainers.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

// Requiere un servidor: TEST_MONGO_URL=mongodb://localhost:27017 go test ./internal/adapters/storage/mongo
func TestTrainersRepo_RoundTrip(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URL")
	if uri == "" {
		t.Skip("TEST_MONGO_URL not set")
	}
	ctx := context.Background()

	client, err := Connect(ctx, uri)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("pokepet_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	repo := NewTrainersRepo(db)
	now := time.Now().UTC().Truncate(time.Millisecond)

	created, err := repo.Create(ctx, trainers.Trainer{
		ID:        "gary",
		Pets:      []trainers.Pet{trainers.NewPet("Squirtle", now)},
		CreatedAt: now,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.Create(ctx, trainers.Trainer{ID: "gary"}); !errors.Is(err, trainers.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}

	p := created.Pets[0]
	p.Friendship = 61
	updated, err := repo.UpdatePet(ctx, "gary", p)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got, _ := updated.FindPet(p.ID); got.Friendship != 61 {
		t.Fatalf("update not applied: %+v", got)
	}

	added, err := repo.AddPet(ctx, "gary", trainers.NewPet("Wartortle", now))
	if err != nil || len(added.Pets) != 2 {
		t.Fatalf("add: %v pets=%+v", err, added.Pets)
	}

	if err := repo.RemovePet(ctx, "gary", p.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.RemovePet(ctx, "nobody", p.ID); !errors.Is(err, trainers.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	got, err := repo.Get(ctx, "gary")
	if err != nil || len(got.Pets) != 1 || got.Pets[0].Name != "Wartortle" {
		t.Fatalf("unexpected trainer: %+v err=%v", got, err)
	}
}
