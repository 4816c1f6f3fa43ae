// Package lifecycle implementa la progresión diaria de la mascota: racha de charla,
// decaimiento de amistad, evolución y huida, y la reconciliación contra el servidor.
package lifecycle

import (
	"math"
	"time"

	"pet-companion-chat/internal/domain/trainers"
)

// Tier es la etiqueta de amistad para UI/prompt. No participa en la aritmética.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// ClampFriendship redondea (mitad hacia arriba) y acota a [0,100]. NaN/Inf => 0.
func ClampFriendship(x float64) int {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	n := math.Floor(x + 0.5)
	if n < trainers.MinFriendship {
		return trainers.MinFriendship
	}
	if n > trainers.MaxFriendship {
		return trainers.MaxFriendship
	}
	return int(n)
}

func FriendshipTier(x float64) Tier {
	v := ClampFriendship(x)
	switch {
	case v <= 33:
		return TierLow
	case v <= 66:
		return TierMedium
	default:
		return TierHigh
	}
}

// ElapsedCalendarDays cuenta los cambios de fecha (en la zona horaria de now) entre
// lastChatted y now. La hora del día se descarta. Devuelve 0 si lastChatted es cero
// o posterior a now.
func ElapsedCalendarDays(lastChatted, now time.Time) int {
	if lastChatted.IsZero() || now.IsZero() {
		return 0
	}

	from := civilDate(lastChatted.In(now.Location()))
	to := civilDate(now)
	if !to.After(from) {
		return 0
	}
	// fechas en UTC: cada día dura exactamente 24h (sin saltos de DST)
	return int(to.Sub(from) / (24 * time.Hour))
}

// SameCalendarDay indica si a cae en la misma fecha local que now.
func SameCalendarDay(a, now time.Time) bool {
	if a.IsZero() || now.IsZero() {
		return false
	}
	return civilDate(a.In(now.Location())).Equal(civilDate(now))
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
