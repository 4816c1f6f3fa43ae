package backendapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"pet-companion-chat/internal/domain/trainers"
)

// Formas de wire del servicio de trainers. Se aceptan "_id"/"id" y
// "talking-streak"/"talkingStreak" porque hay backends viejos que usan unas u otras.
type trainerWire struct {
	ID        *string         `json:"id"`
	MongoID   *string         `json:"_id"`
	Pets      json.RawMessage `json:"pets"`
	CreatedAt *string         `json:"createdAt"`
}

type petWire struct {
	ID               *string  `json:"id"`
	MongoID          *string  `json:"_id"`
	Name             *string  `json:"name"`
	Stage            *float64 `json:"stage"`
	Friendship       *float64 `json:"friendship"`
	TalkingStreak    *float64 `json:"talking-streak"`
	TalkingStreakAlt *float64 `json:"talkingStreak"`
	LastChatted      *string  `json:"lastChatted"`
	LastEvaluated    *string  `json:"lastEvaluated"`
	Context          *string  `json:"context"`
}

// parseTrainer convierte el payload en un trainers.Trainer tipado o devuelve *trainers.MalformedError.
func parseTrainer(status int, raw []byte) (trainers.Trainer, error) {
	malformed := func(format string, args ...any) error {
		return &trainers.MalformedError{Status: status, Err: fmt.Errorf(format, args...)}
	}

	var w trainerWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return trainers.Trainer{}, malformed("trainer: %v", err)
	}

	id := firstNonEmpty(w.ID, w.MongoID)
	if id == "" {
		return trainers.Trainer{}, malformed("trainer: id is required")
	}

	t := trainers.Trainer{ID: id, Pets: []trainers.Pet{}}
	if w.CreatedAt != nil {
		t.CreatedAt = parseTime(*w.CreatedAt)
	}

	if len(w.Pets) == 0 || string(w.Pets) == "null" {
		return t, nil
	}

	var pets []petWire
	if err := json.Unmarshal(w.Pets, &pets); err != nil {
		return trainers.Trainer{}, malformed("trainer %q: pets must be an array of pets: %v", id, err)
	}

	for i, pw := range pets {
		p, err := parsePet(pw)
		if err != nil {
			return trainers.Trainer{}, malformed("trainer %q: pets[%d]: %v", id, i, err)
		}
		t.Pets = append(t.Pets, p)
	}
	return t, nil
}

func parsePet(w petWire) (trainers.Pet, error) {
	id := firstNonEmpty(w.ID, w.MongoID)
	if id == "" {
		return trainers.Pet{}, errors.New("id is required")
	}

	p := trainers.Pet{
		ID:            id,
		Stage:         trainers.DefaultStage,
		Friendship:    trainers.DefaultFriendship,
		TalkingStreak: 0,
	}
	if w.Name != nil {
		p.Name = strings.TrimSpace(*w.Name)
	}

	if w.Stage != nil {
		v, err := wholeNumber("stage", *w.Stage)
		if err != nil {
			return trainers.Pet{}, err
		}
		p.Stage = v
	}
	if w.Friendship != nil {
		v, err := wholeNumber("friendship", *w.Friendship)
		if err != nil {
			return trainers.Pet{}, err
		}
		p.Friendship = min(max(v, trainers.MinFriendship), trainers.MaxFriendship)
	}

	streak := w.TalkingStreak
	if streak == nil {
		streak = w.TalkingStreakAlt
	}
	if streak != nil {
		v, err := wholeNumber("talking-streak", *streak)
		if err != nil {
			return trainers.Pet{}, err
		}
		if v < 0 {
			v = 0
		}
		p.TalkingStreak = v
	}

	// Fechas ilegibles => cero: la evaluación lo trata como 0 días, sin penalidad.
	if w.LastChatted != nil {
		p.LastChatted = parseTime(*w.LastChatted)
	}
	if w.LastEvaluated != nil {
		if le := parseTime(*w.LastEvaluated); !le.IsZero() {
			p.LastEvaluated = &le
		}
	}
	if w.Context != nil {
		p.Context = *w.Context
	}
	return p, nil
}

// petFieldsWire es el cuerpo del PATCH: se mandan todos los campos persistibles.
type petFieldsWire struct {
	Name          string  `json:"name"`
	Stage         int     `json:"stage"`
	Friendship    int     `json:"friendship"`
	TalkingStreak int     `json:"talking-streak"`
	LastChatted   string  `json:"lastChatted"`
	LastEvaluated *string `json:"lastEvaluated,omitempty"`
	Context       *string `json:"context,omitempty"`
}

func toPetFieldsWire(p trainers.Pet) petFieldsWire {
	w := petFieldsWire{
		Name:          p.Name,
		Stage:         p.Stage,
		Friendship:    p.Friendship,
		TalkingStreak: p.TalkingStreak,
		LastChatted:   p.LastChatted.UTC().Format(time.RFC3339Nano),
	}
	if p.LastEvaluated != nil {
		le := p.LastEvaluated.UTC().Format(time.RFC3339Nano)
		w.LastEvaluated = &le
	}
	if p.Context != "" {
		ctx := p.Context
		w.Context = &ctx
	}
	return w
}

// wholeNumber redondea a entero. Fuera de int32 el payload se considera roto.
func wholeNumber(field string, v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number", field)
	}
	v = math.Floor(v + 0.5)
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%s out of range: %g", field, v)
	}
	return int(v), nil
}

func parseTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(vals ...*string) string {
	for _, v := range vals {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}
