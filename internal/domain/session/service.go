package session

import (
	"context"
	"strings"
	"time"

	"pet-companion-chat/internal/domain/lifecycle"
	"pet-companion-chat/internal/domain/trainers"
	"pet-companion-chat/internal/platform/logger"
	"pet-companion-chat/internal/ports/persistence"
)

// Service corre la evaluación diaria del lado servidor para clientes livianos.
// A diferencia del Orchestrator no pregunta nada: si hace falta una mascota
// nueva lo informa con NeedsPet y el cliente la crea por POST /users/{name}/pets.
type Service struct {
	gw  persistence.Gateway
	rec *lifecycle.Reconciler
	obs Observer
	log logger.Logger
	now func() time.Time
}

func NewService(gw persistence.Gateway, obs Observer, log logger.Logger) *Service {
	if obs == nil {
		obs = nopObserver{}
	}
	log = logger.OrNop(log)
	return &Service{
		gw:  gw,
		rec: lifecycle.NewReconciler(gw, log),
		obs: obs,
		log: log,
		now: time.Now,
	}
}

// Start es el resultado de arrancar una sesión.
type Start struct {
	Trainer     trainers.Trainer
	Pet         *trainers.Pet
	NeedsPet    bool
	RunAway     *trainers.Pet
	Evolution   *lifecycle.Evolution
	Messages    []lifecycle.Message
	Consistency lifecycle.Consistency
}

func (s *Service) Start(ctx context.Context, trainerID string) (Start, error) {
	trainerID = strings.TrimSpace(trainerID)
	if trainerID == "" {
		return Start{}, trainers.ErrInvalidInput
	}

	t, err := s.gw.GetTrainer(ctx, trainerID)
	if err != nil {
		return Start{}, err
	}

	pet, ok := t.ActivePet()
	if !ok {
		return Start{Trainer: t, NeedsPet: true, Consistency: lifecycle.Canonical}, nil
	}

	res, err := s.rec.Reconcile(ctx, t, pet, lifecycle.Evaluate(pet, s.now()))
	if err != nil {
		return Start{}, err
	}
	s.obs.Reconciled(res.Consistency)

	out := Start{
		Trainer:     res.Trainer,
		Evolution:   res.Evolution,
		Messages:    res.Messages,
		Consistency: res.Consistency,
	}

	if res.State == lifecycle.StateLost {
		s.obs.RanAway()
		out.NeedsPet = true
		out.RunAway = res.RunAway
		out.Messages = append(out.Messages, lifecycle.Message{
			Sender: lifecycle.SenderSystem,
			Text:   res.RunAway.Name + " has ran away.",
		})
		return out, nil
	}

	if res.Evolution != nil {
		s.obs.Evolved(res.Evolution.From, res.Evolution.To)
	}
	p := res.Pet
	out.Pet = &p
	return out, nil
}
