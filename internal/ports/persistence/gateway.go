package persistence

import (
	"context"

	"pet-companion-chat/internal/domain/trainers"
)

// Gateway es lo mínimo que la reconciliación necesita de la persistencia.
// La implementan el Service de trainers (server) y el cliente HTTP (CLI).
//
// GetTrainer debe devolver trainers.ErrNotFound si no existe, un
// *trainers.TransportError si no se pudo hablar con el servicio y un
// *trainers.MalformedError si la respuesta no respeta el contrato.
type Gateway interface {
	GetTrainer(ctx context.Context, trainerID string) (trainers.Trainer, error)
	UpsertPetFields(ctx context.Context, trainerID, petID string, fields trainers.Pet) (trainers.Trainer, error)
	DeletePet(ctx context.Context, trainerID, petID string) error
	CreatePet(ctx context.Context, trainerID, name string) (trainers.Trainer, error)
}

// TrainerStore agrega el alta de trainers; la usa el orquestador de la CLI.
type TrainerStore interface {
	Gateway
	CreateTrainer(ctx context.Context, trainerID, petName string) (trainers.Trainer, error)
}
