package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// opTimeout bounds every single store call.
const opTimeout = 5 * time.Second

type AccountRepository interface {
	Create(ctx context.Context, a *models.Account) error
	FindByUsername(ctx context.Context, username string) (*models.Account, error)
	UpdateProfile(ctx context.Context, username string, upd models.ProfileUpdate) (bool, error)
}

// ContactRepository stores one UserContacts document per username. Every
// method touches exactly one document and is atomic on its own; sequences of
// calls are not.
type ContactRepository interface {
	// Load returns ErrNotFound when the user has no contacts document yet.
	Load(ctx context.Context, username string) (*models.UserContacts, error)
	Get(ctx context.Context, username string, id primitive.ObjectID) (*models.Contact, error)
	// Append pushes c onto the list, creating the document if needed.
	Append(ctx context.Context, username string, c models.Contact) error
	// AppendIfAbsent is Append guarded on c.ID not already being listed.
	// It reports whether the entry was inserted.
	AppendIfAbsent(ctx context.Context, username string, c models.Contact) (bool, error)
	// Update replaces the mutable fields of one entry and reports whether the
	// document was modified.
	Update(ctx context.Context, username string, id primitive.ObjectID, f models.ContactFields) (bool, error)
	// Remove pulls every entry whose identity is in ids. Missing ids are ignored.
	Remove(ctx context.Context, username string, ids ...primitive.ObjectID) error
}

type LabelRepository interface {
	Create(ctx context.Context, username, name string) error
	List(ctx context.Context, username string) ([]string, error)
	Exists(ctx context.Context, username, name string) (bool, error)
	Delete(ctx context.Context, username, name string) (bool, error)
	Rename(ctx context.Context, username, oldName, newName string) (bool, error)
}

// TrashRepository holds at most one item per (username, contact id).
type TrashRepository interface {
	// Insert stores item. When an item for the same contact already exists its
	// snapshot and deletion time are replaced and its _id is kept.
	Insert(ctx context.Context, item *models.TrashedItem) error
	// List returns the user's items, most recently deleted first.
	List(ctx context.Context, username string) ([]models.TrashedItem, error)
	Get(ctx context.Context, username string, contactID primitive.ObjectID) (*models.TrashedItem, error)
	Delete(ctx context.Context, username string, contactID primitive.ObjectID) (bool, error)
	DeleteAll(ctx context.Context, username string) (int64, error)
}
