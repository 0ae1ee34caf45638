package repository

import (
	"context"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type participantRepository struct {
	db *mongo.Database
}

func NewParticipantRepository(db *mongo.Database) domain.ParticipantRepository {
	return &participantRepository{
		db: db,
	}
}

func (r *participantRepository) Upsert(ctx context.Context, record *domain.ParticipantRecord) error {
	collection := r.db.Collection(db.ParticipantsCollection)

	filter := bson.M{"room_code": record.RoomCode, "user_id": record.UserID}
	update := bson.M{"$set": bson.M{"slot": record.Slot}}

	_, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *participantRepository) Remove(ctx context.Context, roomCode, userID string) error {
	collection := r.db.Collection(db.ParticipantsCollection)

	_, err := collection.DeleteOne(ctx, bson.M{"room_code": roomCode, "user_id": userID})
	return err
}

func (r *participantRepository) RemoveAll(ctx context.Context, roomCode string) error {
	collection := r.db.Collection(db.ParticipantsCollection)

	_, err := collection.DeleteMany(ctx, bson.M{"room_code": roomCode})
	return err
}

func (r *participantRepository) ListGamesByUser(ctx context.Context, userID string, limit int) ([]domain.GameSummary, error) {
	collection := r.db.Collection(db.ParticipantsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         db.RoomsCollection,
			"localField":   "room_code",
			"foreignField": "_id",
			"as":           "room",
		}}},
		{{Key: "$unwind", Value: "$room"}},
		{{Key: "$match", Value: bson.M{"room.status": bson.M{"$ne": domain.RoomStatusFinished}}}},
		{{Key: "$sort", Value: bson.M{"room.updated_at": -1}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.M{
			"code":       "$room._id",
			"name":       "$room.name",
			"status":     "$room.status",
			"created_by": "$room.created_by",
			"slot":       1,
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var summaries []domain.GameSummary
	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}

	return summaries, nil
}
