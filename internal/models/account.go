package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Account struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Username string             `bson:"Username" json:"username"`
	Name     string             `bson:"Name" json:"name"`
	Password []byte             `bson:"Password" json:"-"`
	Photo    string             `bson:"Photo,omitempty" json:"photo,omitempty"`
	PhotoKey string             `bson:"PhotoKey,omitempty" json:"-"`
	Contact  string             `bson:"Contact,omitempty" json:"mobile,omitempty"`
}

// ProfileUpdate carries a partial profile change. An empty Contact leaves the
// stored value untouched. A non-empty PhotoKey points the profile at a private
// object and replaces Photo; otherwise a non-empty Photo replaces the photo and
// drops any stored PhotoKey.
type ProfileUpdate struct {
	Name     string
	Photo    string
	PhotoKey string
	Contact  string
}
