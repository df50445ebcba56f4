package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Nothing listens on port 1, so index creation fails on server selection.
func unreachableDB(t *testing.T) *mongo.Database {
	t.Helper()
	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(100*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client.Database("contacts_unreachable")
}

func TestMongoRepoConstructors_ReportIndexErrors(t *testing.T) {
	ctx := context.Background()
	db := unreachableDB(t)

	tests := []struct {
		name string
		open func() (any, error)
	}{
		{"contacts", func() (any, error) { return NewMongoContactRepo(ctx, db, "User_contacts") }},
		{"trash", func() (any, error) { return NewMongoTrashRepo(ctx, db, "Trash") }},
		{"labels", func() (any, error) { return NewMongoLabelRepo(ctx, db, "Labels") }},
		{"accounts", func() (any, error) { return NewMongoAccountRepo(ctx, db, "Accounts") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, err := tt.open()
			require.Error(t, err)
			require.Nil(t, repo)
		})
	}
}
