package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/KingBbwe/lta/internal/model"
)

type sessionRepo struct {
	collection *mongo.Collection
}

// NewSessionRepo creates a Mongo-backed session repository
func NewSessionRepo(db *mongo.Database) SessionRepo {
	return &sessionRepo{collection: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.collection.InsertOne(ctx, session)
	return err
}

func (r *sessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Update(ctx context.Context, id string, update *model.SessionUpdate) (*model.Session, error) {
	set := bson.M{"lastModifiedAt": time.Now()}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.CurrentQuestion != nil {
		set["currentQuestion"] = *update.CurrentQuestion
	}
	if update.CurrentSection != nil {
		set["currentSection"] = *update.CurrentSection
	}
	if update.StakeholderType != nil {
		set["stakeholderType"] = *update.StakeholderType
	}
	if update.ProgressPct != nil {
		set["progressPct"] = *update.ProgressPct
	}
	if update.CompletedAt != nil {
		set["completedAt"] = *update.CompletedAt
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var session model.Session
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) ListIncomplete(ctx context.Context) ([]*model.Session, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": model.SessionInProgress})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
