package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-companion-chat/internal/domain/trainers"
	"pet-companion-chat/internal/platform/logger"
	"pet-companion-chat/internal/ports/persistence"
)

type State string

const (
	StateReconciled State = "reconciled"
	StateLost       State = "lost"
)

// Consistency indica de dónde salió el Trainer devuelto.
type Consistency string

const (
	// Canonical: re-leído del servidor después de persistir (o no hubo nada que persistir).
	Canonical Consistency = "canonical"
	// Optimistic: la re-lectura falló; es el snapshot local con los cambios aplicados.
	Optimistic Consistency = "optimistic"
)

type Reconciliation struct {
	State       State
	Consistency Consistency
	Trainer     trainers.Trainer
	// Pet es la mascota activa tras reconciliar. Vacía si State == StateLost.
	Pet trainers.Pet
	// RunAway es la mascota que se escapó (solo con StateLost).
	RunAway   *trainers.Pet
	Evolution *Evolution
	Messages  []Message
}

type Reconciler struct {
	gw  persistence.Gateway
	log logger.Logger
}

func NewReconciler(gw persistence.Gateway, log logger.Logger) *Reconciler {
	return &Reconciler{gw: gw, log: logger.OrNop(log)}
}

// Reconcile persiste el resultado de Evaluate y vuelve a leer el trainer.
//
// Si la mascota se escapó, se borra y se devuelve StateLost; el llamador decide
// cómo elegir el nombre de la siguiente (ver Reprovision).
// Si falla la re-lectura por red o not-found, se usa el snapshot con los cambios
// aplicados (Optimistic). Un payload malformado se propaga.
func (r *Reconciler) Reconcile(ctx context.Context, trainer trainers.Trainer, pet trainers.Pet, ev Evaluation) (Reconciliation, error) {
	if ev.Lost {
		if err := r.gw.DeletePet(ctx, trainer.ID, pet.ID); err != nil {
			return Reconciliation{}, fmt.Errorf("delete run-away pet: %w", err)
		}
		r.log.Info("pet ran away", map[string]any{
			"trainer": trainer.ID,
			"pet_id":  pet.ID,
			"pet":     pet.Name,
		})

		runAway := pet
		return Reconciliation{
			State:       StateLost,
			Consistency: Canonical,
			Trainer:     trainer.WithoutPet(pet.ID),
			RunAway:     &runAway,
		}, nil
	}

	if ev.Updates.Empty() {
		return Reconciliation{
			State:       StateReconciled,
			Consistency: Canonical,
			Trainer:     trainer,
			Pet:         pet,
			Evolution:   ev.Evolution,
			Messages:    ev.Messages,
		}, nil
	}

	merged := ev.Updates.Apply(pet)
	if _, err := r.gw.UpsertPetFields(ctx, trainer.ID, pet.ID, merged); err != nil {
		return Reconciliation{}, fmt.Errorf("persist pet updates: %w", err)
	}

	out := Reconciliation{
		State:     StateReconciled,
		Evolution: ev.Evolution,
		Messages:  ev.Messages,
	}

	refreshed, err := r.gw.GetTrainer(ctx, trainer.ID)
	switch {
	case err == nil:
		out.Consistency = Canonical
		out.Trainer = refreshed
		out.Pet = resolvePet(refreshed, pet.ID, merged)
		return out, nil

	case trainers.IsMalformed(err):
		return Reconciliation{}, fmt.Errorf("refresh trainer: %w", err)

	case errors.Is(err, context.Canceled):
		return Reconciliation{}, err
	}

	r.log.Warn("refresh after persist failed; using local snapshot", map[string]any{
		"trainer": trainer.ID,
		"pet_id":  pet.ID,
		"err":     err.Error(),
	})

	out.Consistency = Optimistic
	out.Trainer = trainer.WithPet(merged)
	out.Pet = merged
	return out, nil
}

// Reprovision crea la nueva mascota del trainer después de una huida.
func (r *Reconciler) Reprovision(ctx context.Context, trainerID, petName string) (trainers.Trainer, trainers.Pet, error) {
	petName = strings.TrimSpace(petName)
	if petName == "" {
		return trainers.Trainer{}, trainers.Pet{}, trainers.ErrInvalidInput
	}

	t, err := r.gw.CreatePet(ctx, trainerID, petName)
	if err != nil {
		return trainers.Trainer{}, trainers.Pet{}, fmt.Errorf("create pet: %w", err)
	}

	p, ok := t.ActivePet()
	if !ok {
		return trainers.Trainer{}, trainers.Pet{}, &trainers.MalformedError{
			Err: errors.New("trainer has no named pet after creation"),
		}
	}
	return t, p, nil
}

func resolvePet(t trainers.Trainer, petID string, fallback trainers.Pet) trainers.Pet {
	if p, ok := t.FindPet(petID); ok {
		return p
	}
	if p, ok := t.ActivePet(); ok {
		return p
	}
	return fallback
}
