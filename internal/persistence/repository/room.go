package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type roomRepository struct {
	db *mongo.Database
}

func NewRoomRepository(db *mongo.Database) domain.RoomRepository {
	return &roomRepository{
		db: db,
	}
}

func (r *roomRepository) Create(ctx context.Context, record *domain.RoomRecord) error {
	collection := r.db.Collection(db.RoomsCollection)

	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.Status == "" {
		record.Status = domain.RoomStatusLobby
	}

	_, err := collection.InsertOne(ctx, record)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrRoomAlreadyExists
	}
	return err
}

func (r *roomRepository) FindByCode(ctx context.Context, code string) (*domain.RoomRecord, error) {
	collection := r.db.Collection(db.RoomsCollection)

	var record domain.RoomRecord
	err := collection.FindOne(ctx, bson.M{"_id": code}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}

	return &record, nil
}

func (r *roomRepository) UpdateStatus(ctx context.Context, code string, status domain.RoomStatus) error {
	collection := r.db.Collection(db.RoomsCollection)

	_, err := collection.UpdateOne(ctx,
		bson.M{"_id": code},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
	)
	return err
}

func (r *roomRepository) UpdateSchedule(ctx context.Context, code string, scheduledStart *time.Time) error {
	collection := r.db.Collection(db.RoomsCollection)

	update := bson.M{"$set": bson.M{"scheduled_start": scheduledStart, "updated_at": time.Now()}}
	if scheduledStart == nil {
		update = bson.M{
			"$unset": bson.M{"scheduled_start": ""},
			"$set":   bson.M{"updated_at": time.Now()},
		}
	}

	_, err := collection.UpdateOne(ctx, bson.M{"_id": code}, update)
	return err
}

func (r *roomRepository) ListByCreator(ctx context.Context, userID string, limit int) ([]domain.RoomRecord, error) {
	collection := r.db.Collection(db.RoomsCollection)

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{"created_by": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.RoomRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *roomRepository) ListOpen(ctx context.Context, limit int) ([]domain.RoomRecord, error) {
	collection := r.db.Collection(db.RoomsCollection)

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{"status": domain.RoomStatusLobby}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.RoomRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *roomRepository) Delete(ctx context.Context, code, createdBy string) error {
	collection := r.db.Collection(db.RoomsCollection)

	res, err := collection.DeleteOne(ctx, bson.M{"_id": code, "created_by": createdBy})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		// Distinguish missing room from wrong creator.
		count, err := collection.CountDocuments(ctx, bson.M{"_id": code})
		if err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrRoomNotFound
		}
		return domain.ErrNotCreator
	}

	return nil
}
