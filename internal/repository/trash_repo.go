package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fathima-sithara/contacts-service/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoTrashRepo struct {
	col *mongo.Collection
}

func NewMongoTrashRepo(ctx context.Context, db *mongo.Database, collection string) (TrashRepository, error) {
	col := db.Collection(collection)
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "Username", Value: 1}, {Key: "contact_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("owner_contact_unique"),
		},
		{
			Keys:    bson.D{{Key: "Username", Value: 1}, {Key: "deleted_at", Value: -1}},
			Options: options.Index().SetName("owner_deleted_idx"),
		},
	}); err != nil {
		return nil, fmt.Errorf("create indexes on %s: %w", collection, err)
	}
	return &mongoTrashRepo{col: col}, nil
}

func (r *mongoTrashRepo) Insert(ctx context.Context, item *models.TrashedItem) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	filter := bson.M{"Username": item.Username, "contact_id": item.ContactID}
	update := bson.M{
		"$set": bson.M{
			"ContactDetails": item.ContactDetails,
			"deleted_at":     item.DeletedAt,
		},
		"$setOnInsert": bson.M{"_id": item.ID},
	}
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoTrashRepo) List(ctx context.Context, username string) ([]models.TrashedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "deleted_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"Username": username}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.TrashedItem{}
	for cur.Next(ctx) {
		var it models.TrashedItem
		if err := cur.Decode(&it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, cur.Err()
}

func (r *mongoTrashRepo) Get(ctx context.Context, username string, contactID primitive.ObjectID) (*models.TrashedItem, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var it models.TrashedItem
	err := r.col.FindOne(ctx, bson.M{"Username": username, "contact_id": contactID}).Decode(&it)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *mongoTrashRepo) Delete(ctx context.Context, username string, contactID primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := r.col.DeleteOne(ctx, bson.M{"Username": username, "contact_id": contactID})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *mongoTrashRepo) DeleteAll(ctx context.Context, username string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := r.col.DeleteMany(ctx, bson.M{"Username": username})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
