package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lurdinha/internal/model"
	"lurdinha/pkg/apperr"
)

// RoomRepo maps room documents in the game_rooms collection. GetByCode
// returns (nil, nil) when the room does not exist; services decide whether
// that is an error.
type RoomRepo interface {
	Create(ctx context.Context, room *model.Room) error
	GetByCode(ctx context.Context, code string) (*model.Room, error)
	Exists(ctx context.Context, code string) (bool, error)
	// SetFields merges the named fields into the document. Keys may use
	// dotted paths (e.g. "roundData.answers.<uid>") so a single nested leaf
	// can be written without clobbering siblings.
	SetFields(ctx context.Context, code string, fields map[string]interface{}) error
	// AddPlayer appends the player iff the room is still waiting and the uid
	// is not present yet. Returns true when the append happened.
	AddPlayer(ctx context.Context, code string, player model.Player) (bool, error)
	// BeginRound moves a room out of fromStatus into playing with a fresh
	// round. Returns false when the room was not in fromStatus (someone else
	// advanced it first).
	BeginRound(ctx context.Context, code string, fromStatus model.RoomStatus, round int, data model.RoundData) (bool, error)
	// CompleteRound writes scores and results and moves playing to
	// round_results in one conditional update, so a round resolves at most
	// once. Returns false when the room was not in playing.
	CompleteRound(ctx context.Context, code string, players []model.Player, results *model.RoundResults) (bool, error)
	Delete(ctx context.Context, code string) error
}

type roomRepo struct {
	collection *mongo.Collection
}

func NewRoomRepo(db *mongo.Database) RoomRepo {
	return &roomRepo{collection: db.Collection("game_rooms")}
}

// EnsureRoomIndexes creates the unique index on the room code. The index is
// the last line of defense for code uniqueness behind the Redis reservation.
func EnsureRoomIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("game_rooms").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *roomRepo) Create(ctx context.Context, room *model.Room) error {
	_, err := r.collection.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Newf(apperr.CodeAlreadyExists, "room %s already exists", room.Code)
	}
	return err
}

func (r *roomRepo) GetByCode(ctx context.Context, code string) (*model.Room, error) {
	var room model.Room
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *roomRepo) Exists(ctx context.Context, code string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"code": code}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *roomRepo) SetFields(ctx context.Context, code string, fields map[string]interface{}) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"code": code}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.Newf(apperr.CodeNotFound, "room %s not found", code)
	}
	return nil
}

func (r *roomRepo) AddPlayer(ctx context.Context, code string, player model.Player) (bool, error) {
	filter := bson.M{
		"code":        code,
		"status":      model.RoomWaiting,
		"players.uid": bson.M{"$ne": player.UID},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"players": player}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *roomRepo) BeginRound(ctx context.Context, code string, fromStatus model.RoomStatus, round int, data model.RoundData) (bool, error) {
	filter := bson.M{"code": code, "status": fromStatus}
	update := bson.M{"$set": bson.M{
		"status":       model.RoomPlaying,
		"currentRound": round,
		"roundData":    data,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *roomRepo) CompleteRound(ctx context.Context, code string, players []model.Player, results *model.RoundResults) (bool, error) {
	filter := bson.M{"code": code, "status": model.RoomPlaying}
	update := bson.M{"$set": bson.M{
		"status":            model.RoomRoundResults,
		"players":           players,
		"roundData.results": results,
	}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *roomRepo) Delete(ctx context.Context, code string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	return err
}
