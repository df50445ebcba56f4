package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/events"
	"github.com/fathima-sithara/contacts-service/internal/metrics"
	"github.com/fathima-sithara/contacts-service/internal/models"
	"github.com/fathima-sithara/contacts-service/internal/repository"
	"github.com/fathima-sithara/contacts-service/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgInvalidID   = "Invalid contact ID format."
	publishTimeout = 2 * time.Second
)

// ContactService owns the active list and trash of every user. Operations
// that touch both collections run as a sequence of single-document writes;
// each step is keyed by contact identity so a retried call converges instead
// of losing or duplicating data.
type ContactService struct {
	contacts repository.ContactRepository
	trash    repository.TrashRepository
	pub      events.Publisher
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time

	publishTimeout time.Duration
}

func NewContactService(contacts repository.ContactRepository, trash repository.TrashRepository, pub events.Publisher, m *metrics.Metrics, logger *zap.Logger) *ContactService {
	if pub == nil {
		pub = events.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{
		contacts: contacts,
		trash:    trash,
		pub:      pub,
		metrics:  m,
		log:      logger,
		now:      utils.NowUTC,

		publishTimeout: publishTimeout,
	}
}

func parseContactID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, validationError(msgInvalidID)
	}
	return oid, nil
}

func (s *ContactService) storeFailure(op, username, msg string, err error) error {
	s.log.Error(op+" failed", zap.String("username", username), zap.Error(err))
	return storeError(msg, err)
}

// publish never fails the caller; a broker outage only costs the event and
// at most publishTimeout of request time.
func (s *ContactService) publish(ctx context.Context, typ, username string, count int64, ids ...primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(ctx, s.publishTimeout)
	defer cancel()

	ev := events.Event{
		ID:         utils.NewID(),
		Type:       typ,
		Username:   username,
		Count:      count,
		OccurredAt: s.now(),
	}
	for _, id := range ids {
		ev.ContactIDs = append(ev.ContactIDs, id.Hex())
	}
	err := s.pub.Publish(ctx, ev)
	s.metrics.ObserveEvent(typ, err)
	if err != nil {
		s.log.Warn("publish lifecycle event failed", zap.String("type", typ), zap.String("username", username), zap.Error(err))
	}
}

func (s *ContactService) AddContact(ctx context.Context, username string, f models.ContactFields, ts time.Time) (c *models.Contact, err error) {
	defer func() { s.metrics.Observe("add_contact", err) }()

	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Contact) == "" {
		return nil, validationError("Name and mobile are required")
	}
	c, err = s.add(ctx, username, f, ts)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.ContactCreated, username, 0, c.ID)
	return c, nil
}

func (s *ContactService) add(ctx context.Context, username string, f models.ContactFields, ts time.Time) (*models.Contact, error) {
	if ts.IsZero() {
		ts = s.now()
	}
	c := models.Contact{
		ID:       primitive.NewObjectID(),
		Photo:    f.Photo,
		Name:     f.Name,
		Contact:  f.Contact,
		Email:    f.Email,
		Job:      f.Job,
		Company:  f.Company,
		Labels:   utils.LabelSet(f.Labels),
		DateTime: ts,
	}
	if err := s.contacts.Append(ctx, username, c); err != nil {
		return nil, s.storeFailure("add contact", username, "An error occurred while adding the contact.", err)
	}
	return &c, nil
}

// UpdateContact replaces the editable fields of one entry. Labels are replaced
// wholesale. A write that matches nothing and a write that changes nothing are
// reported the same way.
func (s *ContactService) UpdateContact(ctx context.Context, username, id string, f models.ContactFields) (err error) {
	defer func() { s.metrics.Observe("update_contact", err) }()

	oid, err := parseContactID(id)
	if err != nil {
		return err
	}
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Contact) == "" {
		return validationError("Name and Mobile are required fields.")
	}
	f.Labels = utils.LabelSet(f.Labels)
	modified, err := s.contacts.Update(ctx, username, oid, f)
	if err != nil {
		return s.storeFailure("update contact", username, "An error occurred while updating the contact.", err)
	}
	if !modified {
		return notFoundError("Contact not found or no changes made.")
	}
	s.publish(ctx, events.ContactUpdated, username, 0, oid)
	return nil
}

// MoveToTrash snapshots the entry into the trash and then pulls it from the
// list. If the pull fails the contact is present in both places until the
// call is retried; the trash insert is keyed by contact id so the retry does
// not create a second item.
func (s *ContactService) MoveToTrash(ctx context.Context, username, id string) (err error) {
	defer func() { s.metrics.Observe("move_to_trash", err) }()

	oid, err := parseContactID(id)
	if err != nil {
		return err
	}
	const failMsg = "An error occurred while moving the contact to trash."

	doc, err := s.contacts.Load(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError("User not found.")
	}
	if err != nil {
		return s.storeFailure("move to trash", username, failMsg, err)
	}

	var entry *models.Contact
	for i := range doc.Contacts {
		if doc.Contacts[i].ID == oid {
			entry = &doc.Contacts[i]
			break
		}
	}
	if entry == nil {
		return notFoundError("Contact not found in main list.")
	}

	item := &models.TrashedItem{
		ContactID:      oid,
		Username:       username,
		ContactDetails: *entry,
		DeletedAt:      s.now(),
	}
	if err := s.trash.Insert(ctx, item); err != nil {
		return s.storeFailure("move to trash", username, failMsg, err)
	}
	if err := s.contacts.Remove(ctx, username, oid); err != nil {
		return s.storeFailure("move to trash", username, failMsg, err)
	}
	s.publish(ctx, events.ContactTrashed, username, 0, oid)
	return nil
}

// RestoreContact re-lists the trashed snapshot under its original identity,
// then drops the trash item. The append is skipped when the identity is
// already listed, so a retry after a failed trash delete neither loses nor
// duplicates the contact.
func (s *ContactService) RestoreContact(ctx context.Context, username, id string) (err error) {
	defer func() { s.metrics.Observe("restore_contact", err) }()

	oid, err := parseContactID(id)
	if err != nil {
		return err
	}
	const failMsg = "An error occurred while restoring the contact."

	item, err := s.trash.Get(ctx, username, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return notFoundError("Contact not found in trash.")
	}
	if err != nil {
		return s.storeFailure("restore contact", username, failMsg, err)
	}

	inserted, err := s.contacts.AppendIfAbsent(ctx, username, item.ContactDetails)
	if err != nil {
		return s.storeFailure("restore contact", username, failMsg, err)
	}
	if !inserted {
		s.log.Info("restore found contact already listed", zap.String("username", username), zap.String("contact_id", oid.Hex()))
	}
	if _, err := s.trash.Delete(ctx, username, oid); err != nil {
		return s.storeFailure("restore contact", username, failMsg, err)
	}
	s.publish(ctx, events.ContactRestored, username, 0, oid)
	return nil
}

func (s *ContactService) DeletePermanently(ctx context.Context, username, id string) (err error) {
	defer func() { s.metrics.Observe("delete_permanently", err) }()

	oid, err := parseContactID(id)
	if err != nil {
		return err
	}
	deleted, err := s.trash.Delete(ctx, username, oid)
	if err != nil {
		return s.storeFailure("delete permanently", username, "An error occurred while deleting the contact.", err)
	}
	if !deleted {
		return notFoundError("Contact not found in trash.")
	}
	s.publish(ctx, events.ContactPurged, username, 0, oid)
	return nil
}

// EmptyTrash removes every trashed item of the user and returns how many were
// removed. An empty trash is not an error.
func (s *ContactService) EmptyTrash(ctx context.Context, username string) (n int64, err error) {
	defer func() { s.metrics.Observe("empty_trash", err) }()

	n, err = s.trash.DeleteAll(ctx, username)
	if err != nil {
		return 0, s.storeFailure("empty trash", username, "An error occurred while emptying the trash.", err)
	}
	s.publish(ctx, events.TrashEmptied, username, n)
	return n, nil
}

// MergeContacts folds the given contacts into a new one and removes the
// sources. Scalar fields take the first non-empty value in input order and
// labels are unioned. Every id is resolved before anything is written.
//
// If the sources cannot be removed after the merged contact was created, the
// merged contact is returned together with a store error; the caller can
// finish with RemoveContacts.
func (s *ContactService) MergeContacts(ctx context.Context, username string, ids []string) (merged *models.Contact, err error) {
	defer func() { s.metrics.Observe("merge_contacts", err) }()

	const tooFew = "A list of at least two contact IDs is required to merge."
	if len(ids) < 2 {
		return nil, validationError(tooFew)
	}

	oids := make([]primitive.ObjectID, 0, len(ids))
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	for _, raw := range ids {
		oid, perr := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
		if perr != nil {
			return nil, validationError(fmt.Sprintf("Invalid contact ID format: '%s'", raw))
		}
		if _, dup := seen[oid]; dup {
			continue
		}
		seen[oid] = struct{}{}
		oids = append(oids, oid)
	}
	if len(oids) < 2 {
		return nil, validationError(tooFew)
	}

	sources := make([]models.Contact, 0, len(oids))
	for _, oid := range oids {
		c, gerr := s.contacts.Get(ctx, username, oid)
		if errors.Is(gerr, repository.ErrNotFound) {
			return nil, notFoundError(fmt.Sprintf("Contact with ID '%s' not found.", oid.Hex()))
		}
		if gerr != nil {
			return nil, s.storeFailure("merge contacts", username, "An error occurred while merging the contacts.", gerr)
		}
		sources = append(sources, *c)
	}

	merged, err = s.add(ctx, username, mergeFields(sources), s.now())
	if err != nil {
		return nil, err
	}

	if rerr := s.contacts.Remove(ctx, username, oids...); rerr != nil {
		s.log.Error("merge left source contacts listed",
			zap.String("username", username),
			zap.String("merged_id", merged.ID.Hex()),
			zap.Error(rerr),
		)
		return merged, storeError("Contacts merged but the source contacts could not be removed.", rerr)
	}
	s.publish(ctx, events.ContactMerged, username, 0, append([]primitive.ObjectID{merged.ID}, oids...)...)
	return merged, nil
}

func mergeFields(sources []models.Contact) models.ContactFields {
	var (
		photos, names, phones, emails, jobs, companies []string
		labels                                         [][]string
	)
	for _, c := range sources {
		photos = append(photos, c.Photo)
		names = append(names, c.Name)
		phones = append(phones, c.Contact)
		emails = append(emails, c.Email)
		jobs = append(jobs, c.Job)
		companies = append(companies, c.Company)
		labels = append(labels, c.Labels)
	}
	return models.ContactFields{
		Photo:   utils.FirstNonEmpty(photos...),
		Name:    utils.FirstNonEmpty(names...),
		Contact: utils.FirstNonEmpty(phones...),
		Email:   utils.FirstNonEmpty(emails...),
		Job:     utils.FirstNonEmpty(jobs...),
		Company: utils.FirstNonEmpty(companies...),
		Labels:  utils.LabelSet(labels...),
	}
}

// RemoveContacts pulls the given ids from the active list without trashing
// them. It is the recovery step for a merge whose source removal failed.
func (s *ContactService) RemoveContacts(ctx context.Context, username string, ids []string) (err error) {
	defer func() { s.metrics.Observe("remove_contacts", err) }()

	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, raw := range ids {
		oid, perr := parseContactID(raw)
		if perr != nil {
			return perr
		}
		oids = append(oids, oid)
	}
	if len(oids) == 0 {
		return validationError("At least one contact ID is required.")
	}
	if err := s.contacts.Remove(ctx, username, oids...); err != nil {
		return s.storeFailure("remove contacts", username, "An error occurred while removing the contacts.", err)
	}
	return nil
}

func (s *ContactService) ListContacts(ctx context.Context, username string) (out []models.Contact, err error) {
	defer func() { s.metrics.Observe("list_contacts", err) }()
	return s.load(ctx, username)
}

// load treats a missing contacts document as an empty list.
func (s *ContactService) load(ctx context.Context, username string) ([]models.Contact, error) {
	doc, err := s.contacts.Load(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return []models.Contact{}, nil
	}
	if err != nil {
		return nil, s.storeFailure("load contacts", username, "An error occurred while fetching contacts.", err)
	}
	return doc.Contacts, nil
}

func (s *ContactService) GetContact(ctx context.Context, username, id string) (c *models.Contact, err error) {
	defer func() { s.metrics.Observe("get_contact", err) }()

	oid, err := parseContactID(id)
	if err != nil {
		return nil, err
	}
	c, err = s.contacts.Get(ctx, username, oid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("Contact not found")
	}
	if err != nil {
		return nil, s.storeFailure("get contact", username, "An error occurred while fetching the contact.", err)
	}
	return c, nil
}

// SearchContacts returns the entries whose name, phone, email or any label
// contains query, ignoring case, in list order.
func (s *ContactService) SearchContacts(ctx context.Context, username, query string) (out []models.Contact, err error) {
	defer func() { s.metrics.Observe("search_contacts", err) }()

	all, err := s.load(ctx, username)
	if err != nil {
		return nil, err
	}
	out = make([]models.Contact, 0)
	for _, c := range all {
		if matches(c, query) {
			out = append(out, c)
		}
	}
	return out, nil
}

func matches(c models.Contact, q string) bool {
	if utils.ContainsFold(c.Name, q) || utils.ContainsFold(c.Contact, q) || utils.ContainsFold(c.Email, q) {
		return true
	}
	for _, l := range c.Labels {
		if utils.ContainsFold(l, q) {
			return true
		}
	}
	return false
}

func (s *ContactService) ListTrash(ctx context.Context, username string) (items []models.TrashedItem, err error) {
	defer func() { s.metrics.Observe("list_trash", err) }()

	items, err = s.trash.List(ctx, username)
	if err != nil {
		return nil, s.storeFailure("list trash", username, "An error occurred while fetching the trash.", err)
	}
	if items == nil {
		items = []models.TrashedItem{}
	}
	return items, nil
}
