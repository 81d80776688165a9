package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	ProviderViewsColName = "provider_views"
	viewRetention        = 30 * 24 * time.Hour
	viewDedupeWindow     = time.Hour
)

type ProviderView struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProviderID string             `bson:"provider_id" json:"providerId" validate:"required"`
	UserID     *string            `bson:"user_id,omitempty" json:"userId,omitempty"`
	SessionID  string             `bson:"session_id" json:"sessionId" validate:"required"`
	IPAddress  string             `bson:"ip_address,omitempty" json:"ipAddress,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	ViewedAt   time.Time          `bson:"viewed_at" json:"viewedAt"`
	ExpiresAt  time.Time          `bson:"expires_at" json:"expiresAt"`
}

type ProviderViewStats struct {
	ProviderID    string `json:"providerId"`
	TotalViews    int64  `json:"totalViews"`
	UniqueViews   int64  `json:"uniqueViews"`
	ViewsToday    int64  `json:"viewsToday"`
	ViewsThisWeek int64  `json:"viewsThisWeek"`
}

type ProviderViewsRepo interface {
	TrackProviderView(ctx context.Context, view *ProviderView) error
	GetProviderViewStats(ctx context.Context, providerID string) (*ProviderViewStats, error)
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the TTL and lookup indexes for the views collection.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ProviderViewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("expires_at_ttl"),
		},
		{
			Keys: bson.D{
				{Key: "provider_id", Value: 1},
				{Key: "viewed_at", Value: -1},
			},
			Options: options.Index().SetName("provider_viewed_at_idx"),
		},
		{
			Keys: bson.D{
				{Key: "provider_id", Value: 1},
				{Key: "session_id", Value: 1},
				{Key: "viewed_at", Value: -1},
			},
			Options: options.Index().SetName("provider_session_idx"),
		},
	}
	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating indexes: %w", err)
	}
	return nil
}

// TrackProviderView records a view unless the same session viewed the provider within the last hour.
func (mdb *MongodbRepo) TrackProviderView(ctx context.Context, view *ProviderView) error {
	col, err := mdb.GetCollection(ProviderViewsColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	now := time.Now()
	err = col.FindOne(ctx, bson.M{
		"provider_id": view.ProviderID,
		"session_id":  view.SessionID,
		"viewed_at":   bson.M{"$gte": now.Add(-viewDedupeWindow)},
	}).Err()
	if err == nil {
		return nil
	}
	if err != mongo.ErrNoDocuments {
		return fmt.Errorf("error checking recent view: %w", err)
	}

	view.ViewedAt = now
	view.ExpiresAt = now.Add(viewRetention)
	if view.ID.IsZero() {
		view.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, view); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("error inserting provider view: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetProviderViewStats(ctx context.Context, providerID string) (*ProviderViewStats, error) {
	col, err := mdb.GetCollection(ProviderViewsColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	stats := &ProviderViewStats{ProviderID: providerID}
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))

	if stats.TotalViews, err = col.CountDocuments(ctx, bson.M{"provider_id": providerID}); err != nil {
		return nil, fmt.Errorf("error counting total views: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"provider_id": providerID}}},
		{{Key: "$group", Value: bson.M{"_id": "$session_id"}}},
		{{Key: "$count", Value: "unique_sessions"}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating unique views: %w", err)
	}
	var unique []struct {
		Count int64 `bson:"unique_sessions"`
	}
	if err := cursor.All(ctx, &unique); err != nil {
		return nil, fmt.Errorf("error decoding unique views: %w", err)
	}
	if len(unique) > 0 {
		stats.UniqueViews = unique[0].Count
	}

	stats.ViewsToday, err = col.CountDocuments(ctx, bson.M{
		"provider_id": providerID,
		"viewed_at":   bson.M{"$gte": startOfDay},
	})
	if err != nil {
		return nil, fmt.Errorf("error counting today's views: %w", err)
	}

	stats.ViewsThisWeek, err = col.CountDocuments(ctx, bson.M{
		"provider_id": providerID,
		"viewed_at":   bson.M{"$gte": startOfWeek},
	})
	if err != nil {
		return nil, fmt.Errorf("error counting this week's views: %w", err)
	}
	return stats, nil
}
