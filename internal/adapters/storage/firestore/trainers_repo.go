package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pet-companion-chat/internal/domain/trainers"
)

type Store struct {
	client *firestore.Client
	now    func() time.Time
}

// NewStore crea el cliente de Firestore para el proyecto (GCP_PROJECT).
// Con FIRESTORE_EMULATOR_HOST seteado el SDK apunta al emulador.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) trainersCol() *firestore.CollectionRef {
	return s.client.Collection("trainers")
}

func (s *Store) trainerDoc(id string) *firestore.DocumentRef {
	return s.trainersCol().Doc(id)
}

func (s *Store) petsCol(trainerID string) *firestore.CollectionRef {
	return s.trainerDoc(trainerID).Collection("pets")
}

func (s *Store) petDoc(trainerID, petID string) *firestore.DocumentRef {
	return s.petsCol(trainerID).Doc(petID)
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type trainerDoc struct {
	CreatedAt time.Time `firestore:"created_at"`
}

type petDoc struct {
	Position      int64      `firestore:"position"`
	Name          string     `firestore:"name"`
	Stage         int        `firestore:"stage"`
	Friendship    int        `firestore:"friendship"`
	TalkingStreak int        `firestore:"talking_streak"`
	LastChatted   time.Time  `firestore:"last_chatted"`
	LastEvaluated *time.Time `firestore:"last_evaluated"`
	Context       string     `firestore:"context"`
}

// ─────────────────────────────────────────
// trainers.Repository implementation
// ─────────────────────────────────────────

func (s *Store) Create(ctx context.Context, t trainers.Trainer) (trainers.Trainer, error) {
	base := s.now().UnixNano()

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(s.trainerDoc(t.ID)); err == nil {
			return trainers.ErrAlreadyExists
		} else if status.Code(err) != codes.NotFound {
			return err
		}

		if err := tx.Create(s.trainerDoc(t.ID), trainerDoc{CreatedAt: t.CreatedAt}); err != nil {
			return err
		}
		for i, p := range t.Pets {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			if err := tx.Create(s.petDoc(t.ID, p.ID), toPetDoc(p, base+int64(i))); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return trainers.Trainer{}, trainers.ErrAlreadyExists
		}
		return trainers.Trainer{}, wrap("Create", err)
	}
	return s.Get(ctx, t.ID)
}

func (s *Store) Get(ctx context.Context, id string) (trainers.Trainer, error) {
	snap, err := s.trainerDoc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return trainers.Trainer{}, trainers.ErrNotFound
		}
		return trainers.Trainer{}, fmt.Errorf("firestore Get: %w", err)
	}

	var doc trainerDoc
	if err := snap.DataTo(&doc); err != nil {
		return trainers.Trainer{}, fmt.Errorf("firestore Get decode: %w", err)
	}

	out := trainers.Trainer{
		ID:        id,
		Pets:      make([]trainers.Pet, 0),
		CreatedAt: doc.CreatedAt,
	}

	iter := s.petsCol(id).OrderBy("position", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	for {
		psnap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return trainers.Trainer{}, fmt.Errorf("firestore list pets: %w", err)
		}

		var pd petDoc
		if err := psnap.DataTo(&pd); err != nil {
			return trainers.Trainer{}, fmt.Errorf("decode petDoc: %w", err)
		}
		out.Pets = append(out.Pets, fromPetDoc(psnap.Ref.ID, pd))
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snaps, err := tx.Documents(s.petsCol(id)).GetAll()
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if err := tx.Delete(snap.Ref); err != nil {
				return err
			}
		}
		return tx.Delete(s.trainerDoc(id))
	})
	return wrap("Delete", err)
}

func (s *Store) AddPet(ctx context.Context, trainerID string, p trainers.Pet) (trainers.Trainer, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	pos := s.now().UnixNano()

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(s.trainerDoc(trainerID)); err != nil {
			return notFound(err)
		}
		return tx.Create(s.petDoc(trainerID, p.ID), toPetDoc(p, pos))
	})
	if err != nil {
		return trainers.Trainer{}, wrap("AddPet", err)
	}
	return s.Get(ctx, trainerID)
}

func (s *Store) UpdatePet(ctx context.Context, trainerID string, p trainers.Pet) (trainers.Trainer, error) {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(s.petDoc(trainerID, p.ID))
		if err != nil {
			return notFound(err)
		}
		var cur petDoc
		if err := snap.DataTo(&cur); err != nil {
			return err
		}
		// se conserva la posición original
		return tx.Set(s.petDoc(trainerID, p.ID), toPetDoc(p, cur.Position))
	})
	if err != nil {
		return trainers.Trainer{}, wrap("UpdatePet", err)
	}
	return s.Get(ctx, trainerID)
}

func (s *Store) RemovePet(ctx context.Context, trainerID, petID string) error {
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(s.trainerDoc(trainerID)); err != nil {
			return notFound(err)
		}
		return tx.Delete(s.petDoc(trainerID, petID))
	})
	return wrap("RemovePet", err)
}

func notFound(err error) error {
	if status.Code(err) == codes.NotFound {
		return trainers.ErrNotFound
	}
	return err
}

// wrap deja pasar los errores de dominio tal cual.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, trainers.ErrNotFound) || errors.Is(err, trainers.ErrAlreadyExists) {
		return err
	}
	return fmt.Errorf("firestore %s: %w", op, err)
}

func toPetDoc(p trainers.Pet, position int64) petDoc {
	return petDoc{
		Position:      position,
		Name:          p.Name,
		Stage:         p.Stage,
		Friendship:    p.Friendship,
		TalkingStreak: p.TalkingStreak,
		LastChatted:   p.LastChatted,
		LastEvaluated: p.LastEvaluated,
		Context:       p.Context,
	}
}

func fromPetDoc(id string, pd petDoc) trainers.Pet {
	return trainers.Pet{
		ID:            id,
		Name:          pd.Name,
		Stage:         pd.Stage,
		Friendship:    pd.Friendship,
		TalkingStreak: pd.TalkingStreak,
		LastChatted:   pd.LastChatted,
		LastEvaluated: pd.LastEvaluated,
		Context:       pd.Context,
	}
}
