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

type mongoContactRepo struct {
	col *mongo.Collection
}

func NewMongoContactRepo(ctx context.Context, db *mongo.Database, collection string) (ContactRepository, error) {
	col := db.Collection(collection)
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	// AppendIfAbsent relies on this index to turn a guarded upsert into a
	// duplicate-key error instead of a second document for the same user.
	if _, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "Username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	}); err != nil {
		return nil, fmt.Errorf("create indexes on %s: %w", collection, err)
	}
	return &mongoContactRepo{col: col}, nil
}

func (r *mongoContactRepo) Load(ctx context.Context, username string) (*models.UserContacts, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	var doc models.UserContacts
	err := r.col.FindOne(ctx, bson.M{"Username": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if doc.Contacts == nil {
		doc.Contacts = []models.Contact{}
	}
	return &doc, nil
}

func (r *mongoContactRepo) Get(ctx context.Context, username string, id primitive.ObjectID) (*models.Contact, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	opts := options.FindOne().SetProjection(bson.M{
		"Contacts": bson.M{"$elemMatch": bson.M{"_id": id}},
	})
	var doc models.UserContacts
	err := r.col.FindOne(ctx, bson.M{"Username": username, "Contacts._id": id}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(doc.Contacts) == 0 {
		return nil, ErrNotFound
	}
	c := doc.Contacts[0]
	return &c, nil
}

func (r *mongoContactRepo) Append(ctx context.Context, username string, c models.Contact) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"Username": username},
		bson.M{"$push": bson.M{"Contacts": c}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *mongoContactRepo) AppendIfAbsent(ctx context.Context, username string, c models.Contact) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	// When the user document exists and already lists c.ID the filter misses
	// and the upsert collides with username_unique.
	res, err := r.col.UpdateOne(ctx,
		bson.M{"Username": username, "Contacts._id": bson.M{"$ne": c.ID}},
		bson.M{"$push": bson.M{"Contacts": c}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1 || res.UpsertedCount == 1, nil
}

func (r *mongoContactRepo) Update(ctx context.Context, username string, id primitive.ObjectID, f models.ContactFields) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	set := bson.M{
		"Contacts.$.Name":    f.Name,
		"Contacts.$.Contact": f.Contact,
		"Contacts.$.Email":   f.Email,
		"Contacts.$.Job":     f.Job,
		"Contacts.$.Company": f.Company,
		"Contacts.$.Labels":  f.Labels,
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"Username": username, "Contacts._id": id},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *mongoContactRepo) Remove(ctx context.Context, username string, ids ...primitive.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"Username": username},
		bson.M{"$pull": bson.M{"Contacts": bson.M{"_id": bson.M{"$in": ids}}}},
	)
	return err
}
