// Package session coordina el arranque de una sesión de chat: elegir trainer,
// asegurar una mascota, aplicar el cuidado diario y luego conversar.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-companion-chat/internal/domain/chat"
	"pet-companion-chat/internal/domain/lifecycle"
	"pet-companion-chat/internal/domain/trainers"
	"pet-companion-chat/internal/platform/logger"
	"pet-companion-chat/internal/ports/persistence"
)

// Backend es la persistencia que usa el orquestador.
type Backend = persistence.TrainerStore

// Prompter pide datos al usuario. problem es el error a mostrar del intento
// anterior ("" si no hubo). Devolver error corta el flujo (p.ej. EOF).
type Prompter interface {
	TrainerName(ctx context.Context, initial, problem string) (string, error)
	PetName(ctx context.Context, initial, problem string) (string, error)
	RunAway(ctx context.Context, petName string) error
}

// Observer recibe los hechos relevantes del arranque (métricas).
type Observer interface {
	Evolved(from, to int)
	RanAway()
	Reconciled(c lifecycle.Consistency)
}

type nopObserver struct{}

func (nopObserver) Evolved(int, int)                 {}
func (nopObserver) RanAway()                         {}
func (nopObserver) Reconciled(lifecycle.Consistency) {}

type Orchestrator struct {
	backend Backend
	chat    chat.Completer
	prompt  Prompter
	rec     *lifecycle.Reconciler
	obs     Observer
	log     logger.Logger
	now     func() time.Time
}

type Option func(*Orchestrator)

func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) { o.log = logger.OrNop(l) }
}

func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) {
		if obs != nil {
			o.obs = obs
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func NewOrchestrator(b Backend, c chat.Completer, p Prompter, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend: b,
		chat:    c,
		prompt:  p,
		obs:     nopObserver{},
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if c != nil {
		// valida turnos y aplica el timeout de 60s
		o.chat = chat.NewService(c, chat.WithLogger(o.log))
	}
	o.rec = lifecycle.NewReconciler(b, o.log)
	return o
}

// Bootstrap arma la sesión: trainer, mascota activa, evaluación diaria y reconciliación.
// cachedName es el último trainer usado ("" si no hay).
func (o *Orchestrator) Bootstrap(ctx context.Context, cachedName string) (*Session, error) {
	t, err := o.SelectTrainer(ctx, cachedName)
	if err != nil {
		return nil, err
	}

	t, pet, err := o.ensurePet(ctx, t)
	if err != nil {
		return nil, err
	}

	res, err := o.rec.Reconcile(ctx, t, pet, lifecycle.Evaluate(pet, o.now()))
	if err != nil {
		return nil, err
	}
	o.obs.Reconciled(res.Consistency)

	if res.State == lifecycle.StateLost {
		o.obs.RanAway()
		if err := o.prompt.RunAway(ctx, res.RunAway.Name); err != nil {
			return nil, err
		}
		t, pet, err = o.askForNewPet(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		return newSession(o, t, pet, res.Consistency, nil), nil
	}

	if res.Evolution != nil {
		o.obs.Evolved(res.Evolution.From, res.Evolution.To)
	}
	if res.Consistency == lifecycle.Optimistic {
		o.log.Warn("session started with local snapshot", map[string]any{"trainer": t.ID})
	}

	return newSession(o, res.Trainer, res.Pet, res.Consistency, res.Messages), nil
}

// SelectTrainer resuelve el trainer: primero el cacheado y si no, pregunta.
// Si el nombre no existe, se crea junto con su primera mascota.
func (o *Orchestrator) SelectTrainer(ctx context.Context, cachedName string) (trainers.Trainer, error) {
	name := strings.TrimSpace(cachedName)
	problem := ""

	if name != "" {
		t, err := o.backend.GetTrainer(ctx, name)
		switch {
		case err == nil:
			return t, nil
		case errors.Is(err, trainers.ErrNotFound):
			problem = "We couldn't find that trainer. Please create one."
		default:
			problem = userMessage(err,
				"Unable to look up that trainer. Please try again.",
				"We couldn't connect to the trainer service. Please check your connection and try again.")
		}
	}

	for {
		input, err := o.prompt.TrainerName(ctx, name, problem)
		if err != nil {
			return trainers.Trainer{}, err
		}
		name = strings.TrimSpace(input)
		problem = ""

		if name == "" {
			problem = "Please enter a value."
			continue
		}

		t, err := o.backend.GetTrainer(ctx, name)
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, trainers.ErrNotFound) {
			problem = userMessage(err,
				"Unable to look up that trainer. Please try again.",
				"We couldn't connect to the trainer service. Please check your connection and try again.")
			continue
		}

		t, err = o.createTrainer(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return trainers.Trainer{}, ctx.Err()
			}
			problem = userMessage(err,
				"We couldn't create the trainer. Please try again.",
				"We couldn't reach the server to create the trainer. Please check your connection and try again.")
			continue
		}
		return t, nil
	}
}

func (o *Orchestrator) createTrainer(ctx context.Context, name string) (trainers.Trainer, error) {
	petName, problem := "", ""

	for {
		input, err := o.prompt.PetName(ctx, petName, problem)
		if err != nil {
			return trainers.Trainer{}, err
		}
		petName = strings.TrimSpace(input)
		problem = ""

		if petName == "" {
			problem = "A Pokémon name is required."
			continue
		}

		t, err := o.backend.CreateTrainer(ctx, name, petName)
		switch {
		case err == nil:
			o.log.Info("trainer created", map[string]any{"trainer": t.ID})
			return t, nil
		case errors.Is(err, trainers.ErrAlreadyExists) && t.ID != "":
			// alguien lo creó en el medio: usamos el existente
			return t, nil
		}

		problem = userMessage(err,
			"Unable to create your Pokémon. Please try again.",
			"We couldn't reach the server to create your Pokémon. Please check your connection and try again.")
	}
}

// ensurePet devuelve la mascota activa o pide crear una.
func (o *Orchestrator) ensurePet(ctx context.Context, t trainers.Trainer) (trainers.Trainer, trainers.Pet, error) {
	if p, ok := t.ActivePet(); ok {
		return t, p, nil
	}
	return o.askForNewPet(ctx, t.ID)
}

func (o *Orchestrator) askForNewPet(ctx context.Context, trainerID string) (trainers.Trainer, trainers.Pet, error) {
	petName, problem := "", ""

	for {
		input, err := o.prompt.PetName(ctx, petName, problem)
		if err != nil {
			return trainers.Trainer{}, trainers.Pet{}, err
		}
		petName = strings.TrimSpace(input)

		t, p, err := o.rec.Reprovision(ctx, trainerID, petName)
		if err == nil {
			o.log.Info("pet provisioned", map[string]any{"trainer": trainerID, "pet": p.Name})
			return t, p, nil
		}
		if ctx.Err() != nil {
			return trainers.Trainer{}, trainers.Pet{}, ctx.Err()
		}
		if errors.Is(err, trainers.ErrInvalidInput) {
			problem = "A Pokémon name is required."
			continue
		}
		problem = userMessage(err,
			"Unable to create your Pokémon. Please try again.",
			"We couldn't reach the server to create your Pokémon. Please check your connection and try again.")
	}
}

// userMessage elige el texto para el usuario: el del servidor si lo hay,
// networkFallback si no hubo respuesta HTTP, fallback en otro caso.
func userMessage(err error, fallback, networkFallback string) string {
	var te *trainers.TransportError
	if errors.As(err, &te) {
		if te.Status == 0 {
			return networkFallback
		}
		if strings.TrimSpace(te.Message) != "" {
			return te.Message
		}
		return fallback
	}
	if errors.Is(err, trainers.ErrInvalidInput) {
		msg := strings.TrimPrefix(err.Error(), trainers.ErrInvalidInput.Error()+": ")
		if msg != "" && msg != trainers.ErrInvalidInput.Error() {
			return msg
		}
	}
	return fallback
}
