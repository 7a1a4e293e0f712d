package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lurdinha/internal/model"
)

type UserRepo interface {
	Upsert(ctx context.Context, user *model.User) error
	GetByUID(ctx context.Context, uid string) (*model.User, error)
}

type userRepo struct {
	collection *mongo.Collection
}

func NewUserRepo(db *mongo.Database) UserRepo {
	return &userRepo{collection: db.Collection("users")}
}

func (r *userRepo) Upsert(ctx context.Context, user *model.User) error {
	filter := bson.M{"_id": user.UID}
	_, err := r.collection.ReplaceOne(ctx, filter, user, options.Replace().SetUpsert(true))
	return err
}

func (r *userRepo) GetByUID(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
