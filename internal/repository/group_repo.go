package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"lurdinha/internal/model"
)

type GroupRepo interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id string) (*model.Group, error)
	// AddMember appends the member iff the uid is not present yet. Returns
	// true when the append happened.
	AddMember(ctx context.Context, id string, member model.GroupMember) (bool, error)
	ListByMember(ctx context.Context, uid string) ([]*model.Group, error)
}

type groupRepo struct {
	collection *mongo.Collection
}

func NewGroupRepo(db *mongo.Database) GroupRepo {
	return &groupRepo{collection: db.Collection("groups")}
}

func (r *groupRepo) Create(ctx context.Context, group *model.Group) error {
	_, err := r.collection.InsertOne(ctx, group)
	return err
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.Group, error) {
	var group model.Group
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&group)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) AddMember(ctx context.Context, id string, member model.GroupMember) (bool, error) {
	filter := bson.M{"_id": id, "members.uid": bson.M{"$ne": member.UID}}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"members": member}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *groupRepo) ListByMember(ctx context.Context, uid string) ([]*model.Group, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"members.uid": uid})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []*model.Group
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}
