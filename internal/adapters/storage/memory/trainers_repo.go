package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pet-companion-chat/internal/domain/trainers"
)

type trainerRepo struct {
	mu   sync.RWMutex
	byID map[string]trainers.Trainer
}

func NewTrainerRepo() trainers.Repository {
	return &trainerRepo{
		byID: make(map[string]trainers.Trainer),
	}
}

func (r *trainerRepo) Create(ctx context.Context, t trainers.Trainer) (trainers.Trainer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(t.ID) == "" {
		return trainers.Trainer{}, trainers.ErrInvalidInput
	}
	if _, exists := r.byID[t.ID]; exists {
		return trainers.Trainer{}, trainers.ErrAlreadyExists
	}

	stored := clone(t)
	for i := range stored.Pets {
		if stored.Pets[i].ID == "" {
			stored.Pets[i].ID = uuid.NewString()
		}
	}
	r.byID[t.ID] = stored
	return clone(stored), nil
}

func (r *trainerRepo) Get(ctx context.Context, id string) (trainers.Trainer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.byID[id]
	if !ok {
		return trainers.Trainer{}, trainers.ErrNotFound
	}
	return clone(t), nil
}

func (r *trainerRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byID, id)
	return nil
}

func (r *trainerRepo) AddPet(ctx context.Context, trainerID string, p trainers.Pet) (trainers.Trainer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[trainerID]
	if !ok {
		return trainers.Trainer{}, trainers.ErrNotFound
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	t = clone(t)
	t.Pets = append(t.Pets, clonePet(p))
	r.byID[trainerID] = t
	return clone(t), nil
}

func (r *trainerRepo) UpdatePet(ctx context.Context, trainerID string, p trainers.Pet) (trainers.Trainer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[trainerID]
	if !ok {
		return trainers.Trainer{}, trainers.ErrNotFound
	}
	if _, ok := t.FindPet(p.ID); !ok {
		return trainers.Trainer{}, trainers.ErrNotFound
	}

	t = t.WithPet(clonePet(p))
	r.byID[trainerID] = t
	return clone(t), nil
}

func (r *trainerRepo) RemovePet(ctx context.Context, trainerID, petID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byID[trainerID]
	if !ok {
		return trainers.ErrNotFound
	}
	r.byID[trainerID] = t.WithoutPet(petID)
	return nil
}

// clone evita que quien llama comparta slices/punteros con el store.
func clone(t trainers.Trainer) trainers.Trainer {
	out := t
	out.Pets = make([]trainers.Pet, len(t.Pets))
	for i, p := range t.Pets {
		out.Pets[i] = clonePet(p)
	}
	return out
}

func clonePet(p trainers.Pet) trainers.Pet {
	if p.LastEvaluated != nil {
		le := *p.LastEvaluated
		p.LastEvaluated = &le
	}
	return p
}
