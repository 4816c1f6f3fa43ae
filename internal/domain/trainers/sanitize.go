package trainers

import (
	"math"
	"strings"
	"time"
)

// PetInput es la entrada tolerante para crear una mascota (los números pueden venir
// con decimales o fuera de rango; se normalizan antes de guardar).
type PetInput struct {
	Name          string
	Stage         *float64
	Friendship    *float64
	TalkingStreak *float64
	LastChatted   *time.Time
	Context       *string
}

// PetPatch: nil = no tocar.
type PetPatch struct {
	Name          *string
	Stage         *float64
	Friendship    *float64
	TalkingStreak *float64
	LastChatted   *time.Time
	LastEvaluated *time.Time
	Context       *string
}

// PatchFromPet arma un patch completo a partir de una mascota ya tipada.
func PatchFromPet(p Pet) PetPatch {
	name := p.Name
	stage := float64(p.Stage)
	friendship := float64(p.Friendship)
	streak := float64(p.TalkingStreak)
	lastChatted := p.LastChatted
	ctxText := p.Context

	patch := PetPatch{
		Name:          &name,
		Stage:         &stage,
		Friendship:    &friendship,
		TalkingStreak: &streak,
		LastChatted:   &lastChatted,
		Context:       &ctxText,
	}
	if p.LastEvaluated != nil {
		t := *p.LastEvaluated
		patch.LastEvaluated = &t
	}
	return patch
}

func buildPet(in PetInput, now time.Time) (Pet, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Pet{}, ErrInvalidInput
	}

	p := NewPet(name, now)
	if in.Stage != nil {
		p.Stage = roundClamp(*in.Stage, MinStage, MaxStage, DefaultStage)
	}
	if in.Friendship != nil {
		p.Friendship = roundClamp(*in.Friendship, MinFriendship, MaxFriendship, DefaultFriendship)
	}
	if in.TalkingStreak != nil {
		p.TalkingStreak = normalizeStreak(*in.TalkingStreak)
	}
	if in.LastChatted != nil && !in.LastChatted.IsZero() {
		p.LastChatted = *in.LastChatted
	}
	if in.Context != nil {
		p.Context = strings.TrimSpace(*in.Context)
	}
	return p, nil
}

func applyPatch(cur Pet, patch PetPatch) (Pet, error) {
	out := cur

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Pet{}, ErrInvalidInput
		}
		out.Name = name
	}
	if patch.Stage != nil {
		stage := roundClamp(*patch.Stage, MinStage, MaxStage, cur.Stage)
		// el stage es monótono: una evolución no se deshace
		if stage < cur.Stage {
			return Pet{}, ErrInvalidInput
		}
		out.Stage = stage
	}
	if patch.Friendship != nil {
		out.Friendship = roundClamp(*patch.Friendship, MinFriendship, MaxFriendship, cur.Friendship)
	}
	if patch.TalkingStreak != nil {
		out.TalkingStreak = normalizeStreak(*patch.TalkingStreak)
	}
	if patch.LastChatted != nil && !patch.LastChatted.IsZero() {
		out.LastChatted = *patch.LastChatted
	}
	if patch.LastEvaluated != nil && !patch.LastEvaluated.IsZero() {
		t := *patch.LastEvaluated
		out.LastEvaluated = &t
	}
	if patch.Context != nil {
		out.Context = strings.TrimSpace(*patch.Context)
	}
	return out, nil
}

// roundClamp redondea (mitad hacia arriba) y acota a [lo,hi]. NaN/Inf => fallback.
// Se acota en float64 antes de convertir: int(1e19) no está definido.
func roundClamp(v float64, lo, hi, fallback int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	v = math.Floor(v + 0.5)
	if v < float64(lo) {
		return lo
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

// MaxTalkingStreak acota la racha; ningún trainer chatea tantos días.
const MaxTalkingStreak = math.MaxInt32

func normalizeStreak(v float64) int {
	return roundClamp(v, 0, MaxTalkingStreak, 0)
}
