package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Contact is one entry of a user's contact list. ID is assigned on creation
// and is the only key used to address the entry afterwards.
type Contact struct {
	ID       primitive.ObjectID `bson:"_id" json:"_id"`
	Photo    string             `bson:"Photo" json:"Photo"`
	Name     string             `bson:"Name" json:"Name"`
	Contact  string             `bson:"Contact" json:"Contact"`
	Email    string             `bson:"Email" json:"Email"`
	Job      string             `bson:"Job" json:"Job"`
	Company  string             `bson:"Company" json:"Company"`
	Labels   []string           `bson:"Labels" json:"Labels"`
	DateTime time.Time          `bson:"DateTime" json:"DateTime"`
}

// ContactFields is the mutable part of a Contact.
type ContactFields struct {
	Photo   string
	Name    string
	Contact string
	Email   string
	Job     string
	Company string
	Labels  []string
}

// UserContacts is the per-user document holding the ordered contact list.
type UserContacts struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"Username"`
	Contacts []Contact          `bson:"Contacts"`
}

func (c Contact) Fields() ContactFields {
	return ContactFields{
		Photo:   c.Photo,
		Name:    c.Name,
		Contact: c.Contact,
		Email:   c.Email,
		Job:     c.Job,
		Company: c.Company,
		Labels:  c.Labels,
	}
}
