package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"lurdinha/internal/model"
)

type QuizRepo interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	GetByID(ctx context.Context, id string) (*model.Quiz, error)
	// SetVote writes a single voter's choice via a dotted path, leaving
	// other votes untouched. A re-vote overwrites the previous choice.
	SetVote(ctx context.Context, id, uid string, option int) error
	ListByGroup(ctx context.Context, groupID string) ([]*model.Quiz, error)
}

type quizRepo struct {
	collection *mongo.Collection
}

func NewQuizRepo(db *mongo.Database) QuizRepo {
	return &quizRepo{collection: db.Collection("quizzes")}
}

func (r *quizRepo) Create(ctx context.Context, quiz *model.Quiz) error {
	_, err := r.collection.InsertOne(ctx, quiz)
	return err
}

func (r *quizRepo) GetByID(ctx context.Context, id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quiz)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &quiz, nil
}

func (r *quizRepo) SetVote(ctx context.Context, id, uid string, option int) error {
	field := fmt.Sprintf("votes.%s", uid)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{field: option}})
	return err
}

func (r *quizRepo) ListByGroup(ctx context.Context, groupID string) ([]*model.Quiz, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"groupId": groupID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var quizzes []*model.Quiz
	if err = cursor.All(ctx, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}
