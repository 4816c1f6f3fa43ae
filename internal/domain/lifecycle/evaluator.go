package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"pet-companion-chat/internal/domain/trainers"
)

const (
	// Racha necesaria para evolucionar.
	EvolutionStreak = 7
	// Desde cuántos días sin charla empieza a bajar la amistad.
	DecayAfterDays = 3
	// Amistad perdida por cada día sin charla (cuando aplica decaimiento).
	DecayPerDay = 10

	SenderSystem = "System"
)

// Updates: nil = campo sin cambios.
type Updates struct {
	Friendship    *int
	TalkingStreak *int
	Stage         *int
	LastChatted   *time.Time
	LastEvaluated *time.Time
}

func (u Updates) Empty() bool {
	return u.Friendship == nil &&
		u.TalkingStreak == nil &&
		u.Stage == nil &&
		u.LastChatted == nil &&
		u.LastEvaluated == nil
}

// Apply devuelve una copia de la mascota con los cambios aplicados.
func (u Updates) Apply(p trainers.Pet) trainers.Pet {
	out := p
	if u.Friendship != nil {
		out.Friendship = *u.Friendship
	}
	if u.TalkingStreak != nil {
		out.TalkingStreak = *u.TalkingStreak
	}
	if u.Stage != nil {
		out.Stage = *u.Stage
	}
	if u.LastChatted != nil {
		out.LastChatted = *u.LastChatted
	}
	if u.LastEvaluated != nil {
		t := *u.LastEvaluated
		out.LastEvaluated = &t
	}
	return out
}

type Evolution struct {
	From       int         `json:"from"`
	To         int         `json:"to"`
	FromDetail StageDetail `json:"fromDetail"`
	ToDetail   StageDetail `json:"toDetail"`
}

// Message es un mensaje para mostrar en el chat (p.ej. avisos del sistema).
type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"message"`
}

type Evaluation struct {
	Updates   Updates
	Lost      bool
	Evolution *Evolution
	Messages  []Message
}

// Evaluate calcula el cuidado diario de la mascota al arrancar la sesión.
// Es pura: no falla ni hace I/O. Huida y evolución son excluyentes.
func Evaluate(pet trainers.Pet, now time.Time) Evaluation {
	friendship := ClampFriendship(float64(pet.Friendship))

	// Ya se escapó (estado viejo): no hay nada más que calcular.
	if friendship <= 0 {
		return Evaluation{Lost: true}
	}

	// Ya evaluada hoy: repetir la evaluación no debe volver a aplicar cambios.
	if pet.LastEvaluated != nil && SameCalendarDay(*pet.LastEvaluated, now) {
		return Evaluation{}
	}

	days := ElapsedCalendarDays(pet.LastChatted, now)

	var u Updates

	streak := pet.TalkingStreak
	if streak < 0 {
		streak = 0
	}
	switch {
	case days == 1:
		streak++
		u.TalkingStreak = intPtr(streak)
	case days > 1:
		if streak != 0 {
			streak = 0
			u.TalkingStreak = intPtr(0)
		}
	}

	if days >= DecayAfterDays {
		decreased := friendship - days*DecayPerDay
		if decreased < 0 {
			decreased = 0
		}
		if decreased != friendship {
			friendship = decreased
			u.Friendship = intPtr(friendship)
		}
	}

	// La huida por decaimiento gana sobre la evolución: se descartan los cambios.
	if friendship <= 0 {
		return Evaluation{Lost: true}
	}

	var evo *Evolution
	var messages []Message

	stage := pet.Stage
	if stage < trainers.MinStage {
		stage = trainers.MinStage
	}
	if stage < trainers.MaxStage && streak >= EvolutionStreak {
		next := stage + 1
		u.Stage = intPtr(next)
		u.TalkingStreak = intPtr(0)

		evo = &Evolution{
			From:       stage,
			To:         next,
			FromDetail: StageDetailFor(stage),
			ToDetail:   StageDetailFor(next),
		}
		messages = append(messages, Message{
			Sender: SenderSystem,
			Text:   evolutionText(pet.Name, evo),
		})
	}

	if u.Empty() {
		return Evaluation{}
	}

	evaluatedAt := now
	u.LastEvaluated = &evaluatedAt

	return Evaluation{
		Updates:   u,
		Evolution: evo,
		Messages:  messages,
	}
}

func evolutionText(petName string, evo *Evolution) string {
	name := strings.TrimSpace(petName)
	if name == "" {
		name = "Your companion"
	}
	from := evo.FromDetail.Species
	to := evo.ToDetail.Species
	if to == "" {
		to = from
	}
	return fmt.Sprintf("%s has evolved from %s to %s!", name, from, to)
}

func intPtr(v int) *int { return &v }
