// Package mongo guarda cada trainer como un documento de la colección "users",
// con _id = nombre del trainer y las mascotas embebidas en "pets".
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"pet-companion-chat/internal/domain/trainers"
)

const CollectionName = "users"

type trainerDoc struct {
	ID        string    `bson:"_id"`
	Pets      []petDoc  `bson:"pets"`
	CreatedAt time.Time `bson:"createdAt"`
}

type petDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	Name          string             `bson:"name"`
	Stage         int                `bson:"stage"`
	Friendship    int                `bson:"friendship"`
	TalkingStreak int                `bson:"talking-streak"`
	LastChatted   time.Time          `bson:"lastChatted"`
	LastEvaluated *time.Time         `bson:"lastEvaluated,omitempty"`
	Context       string             `bson:"context,omitempty"`
}

// Connect abre el cliente y hace ping al primario.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

type TrainersRepo struct {
	coll *mongo.Collection
}

func NewTrainersRepo(db *mongo.Database) *TrainersRepo {
	return &TrainersRepo{coll: db.Collection(CollectionName)}
}

func (r *TrainersRepo) Create(ctx context.Context, t trainers.Trainer) (trainers.Trainer, error) {
	doc := trainerDoc{
		ID:        t.ID,
		Pets:      make([]petDoc, 0, len(t.Pets)),
		CreatedAt: t.CreatedAt,
	}
	for _, p := range t.Pets {
		pd, err := toPetDoc(p)
		if err != nil {
			return trainers.Trainer{}, err
		}
		doc.Pets = append(doc.Pets, pd)
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return trainers.Trainer{}, trainers.ErrAlreadyExists
		}
		return trainers.Trainer{}, err
	}
	return fromTrainerDoc(doc), nil
}

func (r *TrainersRepo) Get(ctx context.Context, id string) (trainers.Trainer, error) {
	var doc trainerDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return trainers.Trainer{}, mapErr(err)
	}
	return fromTrainerDoc(doc), nil
}

func (r *TrainersRepo) Delete(ctx context.Context, id string) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *TrainersRepo) AddPet(ctx context.Context, trainerID string, p trainers.Pet) (trainers.Trainer, error) {
	pd, err := toPetDoc(p)
	if err != nil {
		return trainers.Trainer{}, err
	}

	return r.findOneAndUpdate(ctx,
		bson.M{"_id": trainerID},
		bson.M{"$push": bson.M{"pets": pd}},
	)
}

func (r *TrainersRepo) UpdatePet(ctx context.Context, trainerID string, p trainers.Pet) (trainers.Trainer, error) {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return trainers.Trainer{}, trainers.ErrNotFound
	}
	pd, err := toPetDoc(p)
	if err != nil {
		return trainers.Trainer{}, err
	}

	return r.findOneAndUpdate(ctx,
		bson.M{"_id": trainerID, "pets._id": oid},
		bson.M{"$set": bson.M{"pets.$": pd}},
	)
}

func (r *TrainersRepo) RemovePet(ctx context.Context, trainerID, petID string) error {
	filter := bson.M{"_id": trainerID}

	oid, err := primitive.ObjectIDFromHex(petID)
	if err != nil {
		// un id inválido no puede existir; solo chequeamos el trainer
		n, err := r.coll.CountDocuments(ctx, filter)
		if err != nil {
			return err
		}
		if n == 0 {
			return trainers.ErrNotFound
		}
		return nil
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$pull": bson.M{"pets": bson.M{"_id": oid}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return trainers.ErrNotFound
	}
	return nil
}

func (r *TrainersRepo) findOneAndUpdate(ctx context.Context, filter, update bson.M) (trainers.Trainer, error) {
	var doc trainerDoc
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return trainers.Trainer{}, mapErr(err)
	}
	return fromTrainerDoc(doc), nil
}

func mapErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return trainers.ErrNotFound
	}
	return err
}

func toPetDoc(p trainers.Pet) (petDoc, error) {
	oid := primitive.NewObjectID()
	if p.ID != "" {
		parsed, err := primitive.ObjectIDFromHex(p.ID)
		if err != nil {
			return petDoc{}, fmt.Errorf("%w: pet id must be an ObjectID", trainers.ErrInvalidInput)
		}
		oid = parsed
	}

	return petDoc{
		ID:            oid,
		Name:          p.Name,
		Stage:         p.Stage,
		Friendship:    p.Friendship,
		TalkingStreak: p.TalkingStreak,
		LastChatted:   p.LastChatted.UTC(),
		LastEvaluated: utcPtr(p.LastEvaluated),
		Context:       p.Context,
	}, nil
}

func fromTrainerDoc(doc trainerDoc) trainers.Trainer {
	t := trainers.Trainer{
		ID:        doc.ID,
		Pets:      make([]trainers.Pet, 0, len(doc.Pets)),
		CreatedAt: doc.CreatedAt,
	}
	for _, pd := range doc.Pets {
		t.Pets = append(t.Pets, trainers.Pet{
			ID:            pd.ID.Hex(),
			Name:          pd.Name,
			Stage:         pd.Stage,
			Friendship:    pd.Friendship,
			TalkingStreak: pd.TalkingStreak,
			LastChatted:   pd.LastChatted,
			LastEvaluated: pd.LastEvaluated,
			Context:       pd.Context,
		})
	}
	return t
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
