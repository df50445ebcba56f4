package service

import (
	"context"
	"errors"
	"sync"

	"github.com/fathima-sithara/contacts-service/internal/models"
	"github.com/fathima-sithara/contacts-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errStoreDown = errors.New("store unavailable")

// failingContacts injects errors into selected contact store calls.
type failingContacts struct {
	repository.ContactRepository

	mu         sync.Mutex
	appendErr  error
	removeErr  error
	loadErr    error
	removeHits int
}

func (f *failingContacts) set(fn func(f *failingContacts)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *failingContacts) Load(ctx context.Context, username string) (*models.UserContacts, error) {
	f.mu.Lock()
	err := f.loadErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.ContactRepository.Load(ctx, username)
}

func (f *failingContacts) Append(ctx context.Context, username string, c models.Contact) error {
	f.mu.Lock()
	err := f.appendErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.ContactRepository.Append(ctx, username, c)
}

func (f *failingContacts) Remove(ctx context.Context, username string, ids ...primitive.ObjectID) error {
	f.mu.Lock()
	f.removeHits++
	err := f.removeErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.ContactRepository.Remove(ctx, username, ids...)
}

type failingTrash struct {
	repository.TrashRepository

	mu        sync.Mutex
	deleteErr error
	insertErr error
}

func (f *failingTrash) set(fn func(f *failingTrash)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *failingTrash) Insert(ctx context.Context, item *models.TrashedItem) error {
	f.mu.Lock()
	err := f.insertErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.TrashRepository.Insert(ctx, item)
}

func (f *failingTrash) Delete(ctx context.Context, username string, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	err := f.deleteErr
	f.mu.Unlock()
	if err != nil {
		return false, err
	}
	return f.TrashRepository.Delete(ctx, username, id)
}

type failingLabels struct {
	repository.LabelRepository
	err error
}

func (f *failingLabels) Exists(context.Context, string, string) (bool, error) { return false, f.err }
func (f *failingLabels) List(context.Context, string) ([]string, error)        { return nil, f.err }
