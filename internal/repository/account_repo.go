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

type mongoAccountRepo struct {
	col *mongo.Collection
}

func NewMongoAccountRepo(ctx context.Context, db *mongo.Database, collection string) (AccountRepository, error) {
	col := db.Collection(collection)
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	}); err != nil {
		return nil, fmt.Errorf("create indexes on %s: %w", collection, err)
	}
	return &mongoAccountRepo{col: col}, nil
}

func (r *mongoAccountRepo) Create(ctx context.Context, a *models.Account) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *mongoAccountRepo) FindByUsername(ctx context.Context, username string) (*models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var a models.Account
	err := r.col.FindOne(ctx, bson.M{"Username": username}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *mongoAccountRepo) UpdateProfile(ctx context.Context, username string, upd models.ProfileUpdate) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	set := bson.M{"Name": upd.Name}
	if upd.Contact != "" {
		set["Contact"] = upd.Contact
	}
	update := bson.M{"$set": set}
	switch {
	case upd.PhotoKey != "":
		set["PhotoKey"] = upd.PhotoKey
		set["Photo"] = upd.Photo
	case upd.Photo != "":
		set["Photo"] = upd.Photo
		update["$unset"] = bson.M{"PhotoKey": ""}
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"Username": username}, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
