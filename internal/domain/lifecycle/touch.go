package lifecycle

import (
	"time"

	"pet-companion-chat/internal/domain/trainers"
)

// FirstMessageBonus es la amistad extra si la charla anterior fue exactamente ayer.
const FirstMessageBonus = 10

// TouchUpdates calcula los cambios que produce el primer mensaje de una sesión:
// lastChatted pasa a now y, si la charla previa fue el día calendario anterior,
// la amistad sube FirstMessageBonus (acotada).
func TouchUpdates(pet trainers.Pet, now time.Time) Updates {
	touchedAt := now
	u := Updates{LastChatted: &touchedAt}

	if ElapsedCalendarDays(pet.LastChatted, now) == 1 {
		u.Friendship = intPtr(ClampFriendship(float64(pet.Friendship + FirstMessageBonus)))
	}
	return u
}
