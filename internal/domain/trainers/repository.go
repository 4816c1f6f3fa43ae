package trainers

import "context"

// Repository es el document store de trainers. Las mascotas viajan embebidas.
//
// Contrato común a todos los adapters:
//   - Create asigna ID a las mascotas que vengan sin él; ErrAlreadyExists si el trainer existe.
//   - Get/AddPet/UpdatePet devuelven ErrNotFound si falta el trainer (o la mascota en UpdatePet).
//   - Delete y RemovePet son idempotentes respecto de la mascota/trainer ya borrados,
//     salvo RemovePet con trainer inexistente (ErrNotFound).
type Repository interface {
	Create(ctx context.Context, t Trainer) (Trainer, error)
	Get(ctx context.Context, id string) (Trainer, error)
	Delete(ctx context.Context, id string) error

	AddPet(ctx context.Context, trainerID string, p Pet) (Trainer, error)
	UpdatePet(ctx context.Context, trainerID string, p Pet) (Trainer, error)
	RemovePet(ctx context.Context, trainerID, petID string) error
}
