package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KingBbwe/lta/internal/model"
)

type analyticsRepo struct {
	collection *mongo.Collection
}

// NewAnalyticsRepo creates a Mongo-backed analytics repository
func NewAnalyticsRepo(db *mongo.Database) AnalyticsRepo {
	return &analyticsRepo{collection: db.Collection("analytics")}
}

// analyticsDoc keeps Data raw so Get can decode it into the caller's type
type analyticsDoc struct {
	ID         string    `bson:"_id"`
	SessionID  string    `bson:"sessionId"`
	MetricType string    `bson:"metricType"`
	Data       bson.Raw  `bson:"data"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func (r *analyticsRepo) Save(ctx context.Context, sessionID, metricType string, data interface{}) error {
	filter := bson.M{"sessionId": sessionID, "metricType": metricType}
	update := bson.M{
		"$set": bson.M{
			"data":      data,
			"updatedAt": time.Now(),
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.New().String(),
			"sessionId":  sessionID,
			"metricType": metricType,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *analyticsRepo) Get(ctx context.Context, sessionID, metricType string, out interface{}) error {
	var doc analyticsDoc
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID, "metricType": metricType}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return bson.Unmarshal(doc.Data, out)
}

func (r *analyticsRepo) ListBySession(ctx context.Context, sessionID string) ([]model.AnalyticsRecord, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []model.AnalyticsRecord{}
	for cursor.Next(ctx) {
		var doc analyticsDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		data := bson.M{}
		if err := bson.Unmarshal(doc.Data, &data); err != nil {
			return nil, err
		}
		records = append(records, model.AnalyticsRecord{
			ID:         doc.ID,
			SessionID:  doc.SessionID,
			MetricType: doc.MetricType,
			Data:       data,
			UpdatedAt:  doc.UpdatedAt,
		})
	}
	return records, cursor.Err()
}

func (r *analyticsRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}
