package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Behaviour shared by the memory and Mongo stores.

func newContact(name string, labels ...string) models.Contact {
	return models.Contact{
		ID:       primitive.NewObjectID(),
		Name:     name,
		Contact:  "555",
		Labels:   labels,
		DateTime: time.Now().UTC().Truncate(time.Millisecond),
	}
}

func testContactRepo(t *testing.T, repo ContactRepository) {
	ctx := context.Background()
	const user = "alice"

	_, err := repo.Load(ctx, user)
	require.ErrorIs(t, err, ErrNotFound)

	a := newContact("A", "x")
	b := newContact("B")
	require.NoError(t, repo.Append(ctx, user, a))
	require.NoError(t, repo.Append(ctx, user, b))

	doc, err := repo.Load(ctx, user)
	require.NoError(t, err)
	require.Len(t, doc.Contacts, 2)
	assert.Equal(t, a.ID, doc.Contacts[0].ID)
	assert.Equal(t, b.ID, doc.Contacts[1].ID)

	got, err := repo.Get(ctx, user, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "B", got.Name)

	_, err = repo.Get(ctx, user, primitive.NewObjectID())
	require.ErrorIs(t, err, ErrNotFound)

	inserted, err := repo.AppendIfAbsent(ctx, user, a)
	require.NoError(t, err)
	assert.False(t, inserted)

	c := newContact("C")
	inserted, err = repo.AppendIfAbsent(ctx, user, c)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.AppendIfAbsent(ctx, "bob", newContact("first"))
	require.NoError(t, err)
	assert.True(t, inserted)

	f := a.Fields()
	f.Name = "A2"
	ok, err := repo.Update(ctx, user, a.ID, f)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Update(ctx, user, a.ID, f)
	require.NoError(t, err)
	assert.False(t, ok, "identical update reports no modification")

	ok, err = repo.Update(ctx, user, primitive.NewObjectID(), f)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Remove(ctx, user, a.ID, c.ID, primitive.NewObjectID()))
	require.NoError(t, repo.Remove(ctx, user, a.ID))
	require.NoError(t, repo.Remove(ctx, "nobody", a.ID))

	doc, err = repo.Load(ctx, user)
	require.NoError(t, err)
	require.Len(t, doc.Contacts, 1)
	assert.Equal(t, b.ID, doc.Contacts[0].ID)
}

func testTrashRepo(t *testing.T, repo TrashRepository) {
	ctx := context.Background()
	const user = "alice"
	now := time.Now().UTC().Truncate(time.Millisecond)

	older := newContact("old")
	newer := newContact("new")
	require.NoError(t, repo.Insert(ctx, &models.TrashedItem{
		ContactID: older.ID, Username: user, ContactDetails: older, DeletedAt: now,
	}))
	require.NoError(t, repo.Insert(ctx, &models.TrashedItem{
		ContactID: newer.ID, Username: user, ContactDetails: newer, DeletedAt: now.Add(time.Second),
	}))

	items, err := repo.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ContactID)
	assert.Equal(t, older.ID, items[1].ContactID)

	edited := older
	edited.Name = "old, edited"
	require.NoError(t, repo.Insert(ctx, &models.TrashedItem{
		ContactID: older.ID, Username: user, ContactDetails: edited, DeletedAt: now.Add(time.Hour),
	}))

	items, err = repo.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, items, 2, "second insert for the same contact replaces the item")
	assert.Equal(t, older.ID, items[0].ContactID)

	got, err := repo.Get(ctx, user, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "old, edited", got.ContactDetails.Name)
	assert.True(t, got.DeletedAt.Equal(now.Add(time.Hour)))

	_, err = repo.Get(ctx, "bob", older.ID)
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := repo.Delete(ctx, user, older.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, user, older.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.DeleteAll(ctx, user)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	items, err = repo.List(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func testLabelRepo(t *testing.T, repo LabelRepository) {
	ctx := context.Background()
	const user = "alice"

	require.NoError(t, repo.Create(ctx, user, "work"))
	require.NoError(t, repo.Create(ctx, user, "home"))
	require.ErrorIs(t, repo.Create(ctx, user, "work"), ErrDuplicate)
	require.NoError(t, repo.Create(ctx, "bob", "work"))

	labels, err := repo.List(ctx, user)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"work", "home"}, labels)

	ok, err := repo.Exists(ctx, user, "work")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Rename(ctx, user, "work", "home")
	require.ErrorIs(t, err, ErrDuplicate)

	ok, err = repo.Rename(ctx, user, "work", "office")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Rename(ctx, user, "missing", "x")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Delete(ctx, user, "office")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, user, "office")
	require.NoError(t, err)
	assert.False(t, ok)

	labels, err = repo.List(ctx, "carol")
	require.NoError(t, err)
	assert.NotNil(t, labels)
	assert.Empty(t, labels)
}

func testAccountRepo(t *testing.T, repo AccountRepository) {
	ctx := context.Background()

	acc := &models.Account{Username: "alice", Name: "Alice", Password: []byte("hash")}
	require.NoError(t, repo.Create(ctx, acc))
	require.ErrorIs(t, repo.Create(ctx, &models.Account{Username: "alice", Name: "Other"}), ErrDuplicate)

	got, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, []byte("hash"), got.Password)

	_, err = repo.FindByUsername(ctx, "bob")
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := repo.UpdateProfile(ctx, "alice", models.ProfileUpdate{Name: "Alice B", Contact: "9"})
	require.NoError(t, err)
	assert.True(t, ok)

	got, err = repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", got.Name)
	assert.Equal(t, "9", got.Contact)

	ok, err = repo.UpdateProfile(ctx, "bob", models.ProfileUpdate{Name: "x"})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.UpdateProfile(ctx, "alice", models.ProfileUpdate{Name: "Alice B", PhotoKey: "alice/1.jpg"})
	require.NoError(t, err)
	got, err = repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice/1.jpg", got.PhotoKey)

	_, err = repo.UpdateProfile(ctx, "alice", models.ProfileUpdate{Name: "Alice B", Photo: "https://new.example/me.png"})
	require.NoError(t, err)
	got, err = repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "https://new.example/me.png", got.Photo)
	assert.Empty(t, got.PhotoKey, "an explicit photo drops the stored key")
}
