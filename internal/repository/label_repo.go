package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoLabelRepo struct {
	col *mongo.Collection
}

func NewMongoLabelRepo(ctx context.Context, db *mongo.Database, collection string) (LabelRepository, error) {
	col := db.Collection(collection)
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Username", Value: 1}, {Key: "LabelName", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("owner_label_unique"),
	}); err != nil {
		return nil, fmt.Errorf("create indexes on %s: %w", collection, err)
	}
	return &mongoLabelRepo{col: col}, nil
}

func (r *mongoLabelRepo) Create(ctx context.Context, username, name string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := r.col.InsertOne(ctx, bson.M{"Username": username, "LabelName": name})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoLabelRepo) List(ctx context.Context, username string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	cur, err := r.col.Find(ctx, bson.M{"Username": username})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []string{}
	for cur.Next(ctx) {
		var doc struct {
			LabelName string `bson:"LabelName"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, doc.LabelName)
	}
	return out, cur.Err()
}

func (r *mongoLabelRepo) Exists(ctx context.Context, username, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	n, err := r.col.CountDocuments(ctx, bson.M{"Username": username, "LabelName": name}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoLabelRepo) Delete(ctx context.Context, username, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := r.col.DeleteOne(ctx, bson.M{"Username": username, "LabelName": name})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}

func (r *mongoLabelRepo) Rename(ctx context.Context, username, oldName, newName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"Username": username, "LabelName": oldName},
		bson.M{"$set": bson.M{"LabelName": newName}},
	)
	if mongo.IsDuplicateKeyError(err) {
		return false, ErrDuplicate
	}
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
