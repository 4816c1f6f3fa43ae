package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-companion-chat/internal/domain/chat"
	"pet-companion-chat/internal/domain/lifecycle"
	"pet-companion-chat/internal/domain/trainers"
)

const touchFailedMessage = "We couldn't update your Pokémon's details right now. They'll refresh later."

// ErrClosed: la sesión terminó (logout).
var ErrClosed = errors.New("session closed")

// Session es el estado de una conversación: trainer y mascota activos, historial
// para el prompt y transcripción para mostrar. No es segura para uso concurrente:
// un turno de chat y un Release no deben correr a la vez.
type Session struct {
	o *Orchestrator

	trainer     trainers.Trainer
	pet         trainers.Pet
	consistency lifecycle.Consistency

	history []chat.Message
	display []lifecycle.Message

	touched bool
	closed  bool
}

func newSession(o *Orchestrator, t trainers.Trainer, p trainers.Pet, c lifecycle.Consistency, notices []lifecycle.Message) *Session {
	s := &Session{
		o:           o,
		trainer:     t,
		pet:         p,
		consistency: c,
	}
	s.display = append(s.display, notices...)
	s.display = append(s.display, s.intro())
	return s
}

func (s *Session) Trainer() trainers.Trainer          { return s.trainer }
func (s *Session) Pet() trainers.Pet                  { return s.pet }
func (s *Session) Consistency() lifecycle.Consistency { return s.consistency }

// Transcript devuelve una copia de lo mostrado hasta ahora.
func (s *Session) Transcript() []lifecycle.Message {
	out := make([]lifecycle.Message, len(s.display))
	copy(out, s.display)
	return out
}

func (s *Session) trainerName() string {
	return orDefault(s.trainer.ID, "Trainer")
}

func (s *Session) petName() string {
	return orDefault(s.pet.Name, lifecycle.SpeciesOf(s.pet))
}

func (s *Session) intro() lifecycle.Message {
	return lifecycle.Message{
		Sender: lifecycle.SenderSystem,
		Text:   fmt.Sprintf("You are chatting as %s. %s perks up, ready to chat.", s.trainerName(), s.petName()),
	}
}

// Send procesa un turno del trainer y devuelve los mensajes nuevos a mostrar
// (incluido el propio). Los fallos del proveedor vuelven como mensajes de System;
// solo se devuelve error si la sesión está cerrada o el contexto se canceló.
func (s *Session) Send(ctx context.Context, text string) ([]lifecycle.Message, error) {
	if s.closed {
		return nil, ErrClosed
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	// el contexto se arma antes de sumar el turno actual
	prompt := chat.BuildRoleplayPrompt(chat.PromptInput{
		UserInput:  text,
		Species:    lifecycle.SpeciesOf(s.pet),
		Friendship: lifecycle.ClampFriendship(float64(s.pet.Friendship)),
		Context:    chat.FormatConversationContext(s.history, s.trainerName(), s.petName()),
	})
	request := chat.RequestMessages(s.pet.Context, prompt)

	out := []lifecycle.Message{{Sender: s.trainerName(), Text: text}}
	s.history = append(s.history, chat.Message{Role: chat.RoleUser, Content: text})

	if !s.touched {
		if msg, ok := s.touch(ctx); !ok {
			out = append(out, msg)
		}
	}

	if s.o.chat == nil {
		out = append(out, lifecycle.Message{Sender: lifecycle.SenderSystem, Text: chat.UserMessage(nil)})
		s.display = append(s.display, out...)
		return out, nil
	}

	reply, err := s.o.chat.Complete(ctx, request)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		out = append(out, lifecycle.Message{Sender: lifecycle.SenderSystem, Text: chat.UserMessage(err)})
		s.display = append(s.display, out...)
		return out, nil
	}

	s.history = append(s.history, chat.Message{Role: chat.RoleAssistant, Content: reply})
	out = append(out, lifecycle.Message{Sender: s.petName(), Text: reply})
	s.display = append(s.display, out...)
	return out, nil
}

// touch persiste lastChatted (y el bonus de amistad) con el primer mensaje.
// Si falla, se reintenta en el siguiente mensaje.
func (s *Session) touch(ctx context.Context) (lifecycle.Message, bool) {
	if s.pet.ID == "" {
		s.touched = true
		return lifecycle.Message{}, true
	}

	merged := lifecycle.TouchUpdates(s.pet, s.o.now()).Apply(s.pet)
	t, err := s.o.backend.UpsertPetFields(ctx, s.trainer.ID, s.pet.ID, merged)
	if err != nil {
		s.o.log.Warn("first message update failed", map[string]any{
			"trainer": s.trainer.ID,
			"pet_id":  s.pet.ID,
			"err":     err.Error(),
		})
		return lifecycle.Message{Sender: lifecycle.SenderSystem, Text: touchFailedMessage}, false
	}

	s.touched = true
	s.pet = merged
	if p, ok := t.FindPet(merged.ID); ok {
		s.trainer, s.pet = t, p
	} else {
		s.trainer = s.trainer.WithPet(merged)
	}
	return lifecycle.Message{}, true
}

// Release deja ir a la mascota activa y pide el nombre de la siguiente.
// El historial de chat se reinicia.
func (s *Session) Release(ctx context.Context) ([]lifecycle.Message, error) {
	if s.closed {
		return nil, ErrClosed
	}

	if err := s.o.backend.DeletePet(ctx, s.trainer.ID, s.pet.ID); err != nil && !errors.Is(err, trainers.ErrNotFound) {
		msg := userMessage(err,
			"We couldn't let your Pokémon go right now. Please try again.",
			"We couldn't reach the server to let your Pokémon go. Please check your connection and try again.")
		return []lifecycle.Message{{Sender: lifecycle.SenderSystem, Text: msg}}, nil
	}
	s.o.log.Info("pet released", map[string]any{"trainer": s.trainer.ID, "pet": s.pet.Name})

	t, p, err := s.o.askForNewPet(ctx, s.trainer.ID)
	if err != nil {
		return nil, err
	}

	s.trainer, s.pet = t, p
	s.consistency = lifecycle.Canonical
	s.history = nil
	s.touched = false
	s.display = []lifecycle.Message{s.intro()}
	return s.Transcript(), nil
}

// Logout cierra la sesión; el llamador debe olvidar el trainer cacheado.
func (s *Session) Logout() {
	s.closed = true
	s.history = nil
}

func (s *Session) Closed() bool { return s.closed }

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
