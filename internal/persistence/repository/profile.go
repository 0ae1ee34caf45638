package repository

import (
	"context"
	"errors"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type profileRepository struct {
	db *mongo.Database
}

func NewProfileRepository(db *mongo.Database) domain.ProfileRepository {
	return &profileRepository{
		db: db,
	}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	collection := r.db.Collection(db.ProfilesCollection)

	var profile domain.Profile
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	return &profile, nil
}

func (r *profileRepository) AddGamePlayed(ctx context.Context, id string) error {
	collection := r.db.Collection(db.ProfilesCollection)

	_, err := collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"games_played": 1}},
	)
	return err
}

func (r *profileRepository) AddGameWon(ctx context.Context, id string) error {
	collection := r.db.Collection(db.ProfilesCollection)

	_, err := collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"games_won": 1, "games_played": 1}},
	)
	return err
}
