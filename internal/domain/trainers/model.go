package trainers

import "time"

// Valores por defecto de una mascota recién creada.
const (
	DefaultStage      = 1
	DefaultFriendship = 50

	MinStage      = 1
	MaxStage      = 3
	MinFriendship = 0
	MaxFriendship = 100
)

// Trainer es la cuenta del usuario. El ID lo elige el propio trainer y es único.
type Trainer struct {
	ID        string
	Pets      []Pet
	CreatedAt time.Time
}

// Pet vive embebida en su Trainer; no se direcciona de forma independiente.
type Pet struct {
	ID   string // lo asigna la capa de persistencia
	Name string

	Stage         int // 1..3, nunca decrece
	Friendship    int // 0..100
	TalkingStreak int // días consecutivos con chat

	LastChatted   time.Time
	LastEvaluated *time.Time // última evaluación diaria que produjo cambios

	Context string // persona opcional para el chat (mensaje system)
}

// NewPet arma una mascota con los defaults del dominio.
func NewPet(name string, now time.Time) Pet {
	return Pet{
		Name:          name,
		Stage:         DefaultStage,
		Friendship:    DefaultFriendship,
		TalkingStreak: 0,
		LastChatted:   now,
	}
}

// ActivePet devuelve la primera mascota con nombre.
func (t Trainer) ActivePet() (Pet, bool) {
	for _, p := range t.Pets {
		if p.Name != "" {
			return p, true
		}
	}
	return Pet{}, false
}

func (t Trainer) FindPet(petID string) (Pet, bool) {
	for _, p := range t.Pets {
		if p.ID == petID {
			return p, true
		}
	}
	return Pet{}, false
}

// WithPet devuelve una copia del trainer con la mascota reemplazada (mismo ID).
// Si la mascota no existe, la copia queda igual.
func (t Trainer) WithPet(p Pet) Trainer {
	out := t
	out.Pets = make([]Pet, len(t.Pets))
	for i, cur := range t.Pets {
		if cur.ID == p.ID {
			out.Pets[i] = p
			continue
		}
		out.Pets[i] = cur
	}
	return out
}

// WithoutPet devuelve una copia del trainer sin la mascota indicada.
func (t Trainer) WithoutPet(petID string) Trainer {
	out := t
	out.Pets = make([]Pet, 0, len(t.Pets))
	for _, cur := range t.Pets {
		if cur.ID == petID {
			continue
		}
		out.Pets = append(out.Pets, cur)
	}
	return out
}
