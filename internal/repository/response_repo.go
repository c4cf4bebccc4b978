package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KingBbwe/lta/internal/model"
)

type responseRepo struct {
	collection *mongo.Collection
}

// NewResponseRepo creates a Mongo-backed response repository
func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{collection: db.Collection("responses")}
}

func (r *responseRepo) Save(ctx context.Context, response *model.Response) error {
	filter := bson.M{
		"sessionId":  response.SessionID,
		"questionId": response.QuestionID,
	}
	update := bson.M{
		"$set": bson.M{
			"payload":    response.Payload,
			"answeredAt": response.AnsweredAt,
		},
		"$setOnInsert": bson.M{
			"_id":        uuid.New().String(),
			"sessionId":  response.SessionID,
			"questionId": response.QuestionID,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *responseRepo) Get(ctx context.Context, sessionID, questionID string) (*model.Response, error) {
	var response model.Response
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID, "questionId": questionID}).Decode(&response)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepo) ListBySession(ctx context.Context, sessionID string) ([]*model.Response, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var responses []*model.Response
	if err = cursor.All(ctx, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepo) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"sessionId": sessionID})
	return err
}
