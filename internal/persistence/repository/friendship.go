package repository

import (
	"context"
	"time"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type friendshipRepository struct {
	db *mongo.Database
}

func NewFriendshipRepository(db *mongo.Database) domain.FriendshipRepository {
	return &friendshipRepository{
		db: db,
	}
}

func eitherDirection(userID, friendID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"user_id": userID, "friend_id": friendID},
		bson.M{"user_id": friendID, "friend_id": userID},
	}}
}

func (r *friendshipRepository) Request(ctx context.Context, userID, friendID string) error {
	collection := r.db.Collection(db.FriendshipsCollection)

	count, err := collection.CountDocuments(ctx, eitherDirection(userID, friendID))
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrFriendshipExists
	}

	_, err = collection.InsertOne(ctx, domain.Friendship{
		UserID:    userID,
		FriendID:  friendID,
		Status:    domain.FriendshipPending,
		CreatedAt: time.Now(),
	})
	return err
}

func (r *friendshipRepository) Accept(ctx context.Context, userID, friendID string) error {
	collection := r.db.Collection(db.FriendshipsCollection)

	// The original request direction is friend → user.
	res, err := collection.UpdateOne(ctx,
		bson.M{"user_id": friendID, "friend_id": userID, "status": domain.FriendshipPending},
		bson.M{"$set": bson.M{"status": domain.FriendshipAccepted}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrFriendshipNotFound
	}

	return nil
}

func (r *friendshipRepository) Remove(ctx context.Context, userID, friendID string) error {
	collection := r.db.Collection(db.FriendshipsCollection)

	res, err := collection.DeleteMany(ctx, eitherDirection(userID, friendID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrFriendshipNotFound
	}

	return nil
}

func (r *friendshipRepository) ListFriends(ctx context.Context, userID string) ([]domain.FriendView, error) {
	collection := r.db.Collection(db.FriendshipsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status": domain.FriendshipAccepted,
			"$or": bson.A{
				bson.M{"user_id": userID},
				bson.M{"friend_id": userID},
			},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"other_id": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$user_id", userID}},
				"$friend_id",
				"$user_id",
			}},
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         db.ProfilesCollection,
			"localField":   "other_id",
			"foreignField": "_id",
			"as":           "profile",
		}}},
		{{Key: "$unwind", Value: "$profile"}},
		{{Key: "$replaceRoot", Value: bson.M{
			"newRoot": bson.M{"$mergeObjects": bson.A{"$profile", bson.M{"status": "$status"}}},
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var friends []domain.FriendView
	if err := cursor.All(ctx, &friends); err != nil {
		return nil, err
	}

	return friends, nil
}

func (r *friendshipRepository) ListPending(ctx context.Context, userID string) ([]domain.Profile, error) {
	collection := r.db.Collection(db.FriendshipsCollection)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"friend_id": userID,
			"status":    domain.FriendshipPending,
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         db.ProfilesCollection,
			"localField":   "user_id",
			"foreignField": "_id",
			"as":           "profile",
		}}},
		{{Key: "$unwind", Value: "$profile"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$profile"}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var profiles []domain.Profile
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}
