package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const FavouriteColName = "favourites"

type FavouriteItem struct {
	ProviderID string    `bson:"provider_id" json:"providerId"`
	AddedAt    time.Time `bson:"added_at" json:"addedAt"`
}

// Favourite is one document per user, keyed by provider id.
type Favourite struct {
	ID        primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	UserID    string                   `bson:"user_id" json:"userId" validate:"required"`
	Items     map[string]FavouriteItem `bson:"items" json:"items"`
	CreatedAt time.Time                `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time                `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

type FavouriteRepo interface {
	AddToFavourites(ctx context.Context, userID, providerID uuid.UUID) (*Favourite, error)
	RemoveFromFavourites(ctx context.Context, userID, providerID uuid.UUID) error
	GetFavouritesByUserID(ctx context.Context, userID uuid.UUID) (*Favourite, error)
}

func (mdb *MongodbRepo) AddToFavourites(ctx context.Context, userID, providerID uuid.UUID) (*Favourite, error) {
	col, err := mdb.GetCollection(FavouriteColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	now := time.Now()
	key := providerID.String()

	update := bson.M{
		"$set": bson.M{
			"updated_at":   now,
			"items." + key: FavouriteItem{ProviderID: key, AddedAt: now},
		},
		"$setOnInsert": bson.M{
			"user_id":    userID.String(),
			"created_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Favourite
	err = col.FindOneAndUpdate(ctx, bson.M{"user_id": userID.String()}, update, opts).Decode(&result)
	if err != nil {
		return nil, fmt.Errorf("error upserting favourite: %w", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) RemoveFromFavourites(ctx context.Context, userID, providerID uuid.UUID) error {
	col, err := mdb.GetCollection(FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	update := bson.M{
		"$unset": bson.M{"items." + providerID.String(): ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}
	if _, err := col.UpdateOne(ctx, bson.M{"user_id": userID.String()}, update); err != nil {
		return fmt.Errorf("error removing favourite: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetFavouritesByUserID(ctx context.Context, userID uuid.UUID) (*Favourite, error) {
	col, err := mdb.GetCollection(FavouriteColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	var fav Favourite
	err = col.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&fav)
	if err == mongo.ErrNoDocuments {
		return &Favourite{UserID: userID.String(), Items: map[string]FavouriteItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding favourites: %w", err)
	}
	if fav.Items == nil {
		fav.Items = map[string]FavouriteItem{}
	}
	return &fav, nil
}
