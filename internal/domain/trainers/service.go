package trainers

import (
	"context"
	"errors"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// CreateTrainer registra un trainer nuevo. Si petName viene, nace con su primera mascota.
// Si el trainer ya existe devuelve el existente junto con ErrAlreadyExists.
func (s *Service) CreateTrainer(ctx context.Context, id, petName string) (Trainer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Trainer{}, ErrInvalidInput
	}

	now := s.now()
	t := Trainer{
		ID:        id,
		Pets:      []Pet{},
		CreatedAt: now,
	}
	if name := strings.TrimSpace(petName); name != "" {
		t.Pets = append(t.Pets, NewPet(name, now))
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			existing, getErr := s.repo.Get(ctx, id)
			if getErr != nil {
				return Trainer{}, err
			}
			return existing, ErrAlreadyExists
		}
		return Trainer{}, err
	}
	return created, nil
}

func (s *Service) GetTrainer(ctx context.Context, id string) (Trainer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Trainer{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) DeleteTrainer(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPets(ctx context.Context, trainerID string) ([]Pet, error) {
	t, err := s.GetTrainer(ctx, trainerID)
	if err != nil {
		return nil, err
	}
	return t.Pets, nil
}

// AddPet crea una mascota normalizando la entrada.
func (s *Service) AddPet(ctx context.Context, trainerID string, in PetInput) (Trainer, error) {
	trainerID = strings.TrimSpace(trainerID)
	if trainerID == "" {
		return Trainer{}, ErrInvalidInput
	}
	p, err := buildPet(in, s.now())
	if err != nil {
		return Trainer{}, err
	}
	return s.repo.AddPet(ctx, trainerID, p)
}

// UpdatePet aplica un patch parcial sobre la mascota.
func (s *Service) UpdatePet(ctx context.Context, trainerID, petID string, patch PetPatch) (Trainer, error) {
	trainerID = strings.TrimSpace(trainerID)
	petID = strings.TrimSpace(petID)
	if trainerID == "" || petID == "" {
		return Trainer{}, ErrInvalidInput
	}

	t, err := s.repo.Get(ctx, trainerID)
	if err != nil {
		return Trainer{}, err
	}
	cur, ok := t.FindPet(petID)
	if !ok {
		return Trainer{}, ErrNotFound
	}

	next, err := applyPatch(cur, patch)
	if err != nil {
		return Trainer{}, err
	}
	return s.repo.UpdatePet(ctx, trainerID, next)
}

func (s *Service) DeletePet(ctx context.Context, trainerID, petID string) error {
	trainerID = strings.TrimSpace(trainerID)
	petID = strings.TrimSpace(petID)
	if trainerID == "" || petID == "" {
		return ErrInvalidInput
	}
	return s.repo.RemovePet(ctx, trainerID, petID)
}

// Las siguientes funciones exponen el Service como Persistence Gateway
// para la evaluación del ciclo de vida del lado servidor.

func (s *Service) UpsertPetFields(ctx context.Context, trainerID, petID string, fields Pet) (Trainer, error) {
	return s.UpdatePet(ctx, trainerID, petID, PatchFromPet(fields))
}

func (s *Service) CreatePet(ctx context.Context, trainerID, name string) (Trainer, error) {
	return s.AddPet(ctx, trainerID, PetInput{Name: name})
}
