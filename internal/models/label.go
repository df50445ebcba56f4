package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type Label struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Username  string             `bson:"Username" json:"-"`
	LabelName string             `bson:"LabelName" json:"label_name"`
}
