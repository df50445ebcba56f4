package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/fathima-sithara/contacts-service/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory stores mirror the Mongo implementations, including single
// document atomicity. They back tests and local runs without a database.

type MemoryAccountRepo struct {
	mu    sync.Mutex
	items map[string]models.Account
}

func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{items: make(map[string]models.Account)}
}

func (r *MemoryAccountRepo) Create(_ context.Context, a *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[a.Username]; ok {
		return ErrDuplicate
	}
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	r.items[a.Username] = *a
	return nil
}

func (r *MemoryAccountRepo) FindByUsername(_ context.Context, username string) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[username]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (r *MemoryAccountRepo) UpdateProfile(_ context.Context, username string, upd models.ProfileUpdate) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[username]
	if !ok {
		return false, nil
	}
	before := a
	a.Name = upd.Name
	if upd.Contact != "" {
		a.Contact = upd.Contact
	}
	switch {
	case upd.PhotoKey != "":
		a.PhotoKey = upd.PhotoKey
		a.Photo = upd.Photo
	case upd.Photo != "":
		a.Photo = upd.Photo
		a.PhotoKey = ""
	}
	if a.Name == before.Name && a.Contact == before.Contact && a.Photo == before.Photo && a.PhotoKey == before.PhotoKey {
		return false, nil
	}
	r.items[username] = a
	return true, nil
}

type MemoryContactRepo struct {
	mu   sync.Mutex
	docs map[string][]models.Contact
}

func NewMemoryContactRepo() *MemoryContactRepo {
	return &MemoryContactRepo{docs: make(map[string][]models.Contact)}
}

func cloneContact(c models.Contact) models.Contact {
	if c.Labels != nil {
		c.Labels = append([]string(nil), c.Labels...)
	}
	return c
}

func (r *MemoryContactRepo) Load(_ context.Context, username string) (*models.UserContacts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, ok := r.docs[username]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]models.Contact, 0, len(list))
	for _, c := range list {
		out = append(out, cloneContact(c))
	}
	return &models.UserContacts{Username: username, Contacts: out}, nil
}

func (r *MemoryContactRepo) Get(_ context.Context, username string, id primitive.ObjectID) (*models.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.docs[username] {
		if c.ID == id {
			cc := cloneContact(c)
			return &cc, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryContactRepo) Append(_ context.Context, username string, c models.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[username] = append(r.docs[username], cloneContact(c))
	return nil
}

func (r *MemoryContactRepo) AppendIfAbsent(_ context.Context, username string, c models.Contact) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.docs[username] {
		if existing.ID == c.ID {
			return false, nil
		}
	}
	r.docs[username] = append(r.docs[username], cloneContact(c))
	return true, nil
}

func (r *MemoryContactRepo) Update(_ context.Context, username string, id primitive.ObjectID, f models.ContactFields) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.docs[username]
	for i, c := range list {
		if c.ID != id {
			continue
		}
		next := c
		next.Name = f.Name
		next.Contact = f.Contact
		next.Email = f.Email
		next.Job = f.Job
		next.Company = f.Company
		next.Labels = append([]string(nil), f.Labels...)
		if sameFields(c, next) {
			return false, nil
		}
		list[i] = next
		return true, nil
	}
	return false, nil
}

func sameFields(a, b models.Contact) bool {
	if a.Name != b.Name || a.Contact != b.Contact || a.Email != b.Email || a.Job != b.Job || a.Company != b.Company {
		return false
	}
	if len(a.Labels) != len(b.Labels) {
		return false
	}
	for i := range a.Labels {
		if a.Labels[i] != b.Labels[i] {
			return false
		}
	}
	return true
}

func (r *MemoryContactRepo) Remove(_ context.Context, username string, ids ...primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, ok := r.docs[username]
	if !ok {
		return nil
	}
	drop := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := list[:0]
	for _, c := range list {
		if _, ok := drop[c.ID]; !ok {
			kept = append(kept, c)
		}
	}
	r.docs[username] = kept
	return nil
}

type MemoryLabelRepo struct {
	mu     sync.Mutex
	labels map[string][]string
}

func NewMemoryLabelRepo() *MemoryLabelRepo {
	return &MemoryLabelRepo{labels: make(map[string][]string)}
}

func (r *MemoryLabelRepo) indexOf(username, name string) int {
	for i, l := range r.labels[username] {
		if l == name {
			return i
		}
	}
	return -1
}

func (r *MemoryLabelRepo) Create(_ context.Context, username, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(username, name) >= 0 {
		return ErrDuplicate
	}
	r.labels[username] = append(r.labels[username], name)
	return nil
}

func (r *MemoryLabelRepo) List(_ context.Context, username string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.labels[username]...), nil
}

func (r *MemoryLabelRepo) Exists(_ context.Context, username, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexOf(username, name) >= 0, nil
}

func (r *MemoryLabelRepo) Delete(_ context.Context, username, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(username, name)
	if i < 0 {
		return false, nil
	}
	l := r.labels[username]
	r.labels[username] = append(l[:i], l[i+1:]...)
	return true, nil
}

func (r *MemoryLabelRepo) Rename(_ context.Context, username, oldName, newName string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(username, oldName)
	if i < 0 || oldName == newName {
		return false, nil
	}
	if r.indexOf(username, newName) >= 0 {
		return false, ErrDuplicate
	}
	r.labels[username][i] = newName
	return true, nil
}

type MemoryTrashRepo struct {
	mu    sync.Mutex
	items map[string][]models.TrashedItem
}

func NewMemoryTrashRepo() *MemoryTrashRepo {
	return &MemoryTrashRepo{items: make(map[string][]models.TrashedItem)}
}

func (r *MemoryTrashRepo) Insert(_ context.Context, item *models.TrashedItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.items[item.Username]
	for i := range list {
		if list[i].ContactID == item.ContactID {
			list[i].ContactDetails = cloneContact(item.ContactDetails)
			list[i].DeletedAt = item.DeletedAt
			return nil
		}
	}
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	cp := *item
	cp.ContactDetails = cloneContact(item.ContactDetails)
	r.items[item.Username] = append(r.items[item.Username], cp)
	return nil
}

func (r *MemoryTrashRepo) List(_ context.Context, username string) ([]models.TrashedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.TrashedItem, 0, len(r.items[username]))
	for _, it := range r.items[username] {
		it.ContactDetails = cloneContact(it.ContactDetails)
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DeletedAt.After(out[j].DeletedAt)
	})
	return out, nil
}

func (r *MemoryTrashRepo) Get(_ context.Context, username string, contactID primitive.ObjectID) (*models.TrashedItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items[username] {
		if it.ContactID == contactID {
			it.ContactDetails = cloneContact(it.ContactDetails)
			return &it, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryTrashRepo) Delete(_ context.Context, username string, contactID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.items[username]
	for i, it := range list {
		if it.ContactID == contactID {
			r.items[username] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *MemoryTrashRepo) DeleteAll(_ context.Context, username string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.items[username]))
	delete(r.items, username)
	return n, nil
}
