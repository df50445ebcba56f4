package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TrashedItem is a soft-deleted contact. ContactDetails is the snapshot taken
// at deletion time and is re-inserted unchanged on restore.
type TrashedItem struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ContactID      primitive.ObjectID `bson:"contact_id" json:"contact_id"`
	Username       string             `bson:"Username" json:"Username"`
	ContactDetails Contact            `bson:"ContactDetails" json:"ContactDetails"`
	DeletedAt      time.Time          `bson:"deleted_at" json:"deleted_at"`
}
