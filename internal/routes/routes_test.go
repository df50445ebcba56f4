package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/events"
	"github.com/fathima-sithara/contacts-service/internal/handlers"
	"github.com/fathima-sithara/contacts-service/internal/metrics"
	"github.com/fathima-sithara/contacts-service/internal/middleware"
	"github.com/fathima-sithara/contacts-service/internal/repository"
	"github.com/fathima-sithara/contacts-service/internal/service"
	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (m *memRevocations) Revoke(_ context.Context, jti string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = exp
	return nil
}

func (m *memRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

type APISuite struct {
	suite.Suite
	app   *fiber.App
	token string
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	logger := zap.NewNop()
	m := metrics.New()
	accounts, err := service.NewAccountService(repository.NewMemoryAccountRepo(), nil,
		service.AccountOptions{BcryptCost: bcrypt.MinCost}, m, logger)
	s.Require().NoError(err)
	contacts := service.NewContactService(repository.NewMemoryContactRepo(), repository.NewMemoryTrashRepo(), &events.Recorder{}, m, logger)
	labels := service.NewLabelService(repository.NewMemoryLabelRepo(), m, logger)

	jm := utils.NewJWTManager("test-secret", time.Hour)
	rev := &memRevocations{revoked: map[string]time.Time{}}

	s.app = NewApp(AppOptions{Name: "test", CORSOrigins: "*"}, logger, m)
	Setup(s.app, Deps{
		Accounts: handlers.NewAccountHandler(accounts, jm, rev, logger),
		Contacts: handlers.NewContactHandler(contacts),
		Trash:    handlers.NewTrashHandler(contacts),
		Labels:   handlers.NewLabelHandler(labels),
		Metrics:  m,
		Auth:     middleware.JWTAuth(jm, rev, logger),
	})

	s.call(http.MethodPost, "/api/v2/signup", map[string]any{"name": "Alice", "username": "alice", "password": "pw"}, "")
	status, body := s.call(http.MethodPost, "/api/v2/signin", map[string]any{"username": "alice", "password": "pw"}, "")
	s.Require().Equal(http.StatusOK, status)
	s.token = body["token"].(string)
}

func (s *APISuite) call(method, path string, payload any, token string) (int, map[string]any) {
	status, raw := s.raw(method, path, payload, token)
	out := map[string]any{}
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &out), string(raw))
	}
	return status, out
}

func (s *APISuite) raw(method, path string, payload any, token string) (int, []byte) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		s.Require().NoError(err)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	return resp.StatusCode, raw
}

func (s *APISuite) createContact(name, mobile string, labels ...string) string {
	status, body := s.call(http.MethodPost, "/api/v2/create_contact",
		map[string]any{"name": name, "mobile": mobile, "labels": labels}, s.token)
	s.Require().Equal(http.StatusCreated, status, body)
	return body["contact"].(map[string]any)["_id"].(string)
}

func (s *APISuite) TestPublicEndpoints() {
	status, body := s.call(http.MethodGet, "/api/v2/", nil, "")
	s.Equal(http.StatusOK, status)
	s.Equal("Welcome to the Contacts API!", body["message"])

	status, body = s.call(http.MethodPost, "/api/v2/check_username", map[string]any{"username": "alice"}, "")
	s.Equal(http.StatusOK, status)
	s.Equal(true, body["exists"])

	status, body = s.call(http.MethodPost, "/api/v2/signup", map[string]any{"name": "A", "username": "alice", "password": "x"}, "")
	s.Equal(http.StatusConflict, status)
	s.Equal(false, body["success"])
	s.Equal("Username already exists.", body["error"])

	status, body = s.call(http.MethodPost, "/api/v2/signup", map[string]any{"username": "bob"}, "")
	s.Equal(http.StatusBadRequest, status)
	s.Equal("Missing required fields", body["error"])

	status, _ = s.call(http.MethodPost, "/api/v2/signin", map[string]any{"username": "alice", "password": "nope"}, "")
	s.Equal(http.StatusUnauthorized, status)

	status, _ = s.call(http.MethodGet, "/healthz", nil, "")
	s.Equal(http.StatusOK, status)
}

func (s *APISuite) TestProtectedRequiresToken() {
	status, body := s.call(http.MethodGet, "/api/v2/contacts", nil, "")
	s.Equal(http.StatusUnauthorized, status)
	s.Equal("Token is missing!", body["error"])
}

func (s *APISuite) TestLogoutRevokesToken() {
	status, _ := s.call(http.MethodPost, "/api/v2/logout", nil, s.token)
	s.Equal(http.StatusOK, status)

	status, body := s.call(http.MethodGet, "/api/v2/user", nil, s.token)
	s.Equal(http.StatusUnauthorized, status)
	s.Equal("Token has been revoked!", body["error"])
}

func (s *APISuite) TestProfile() {
	status, body := s.call(http.MethodGet, "/api/v2/user", nil, s.token)
	s.Require().Equal(http.StatusOK, status)
	user := body["user"].(map[string]any)
	s.Equal("alice", user["username"])
	s.Equal("Alice", user["name"])

	status, body = s.call(http.MethodPut, "/api/v2/user/update", map[string]any{"name": "Alice B", "mobile": "9"}, s.token)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("Alice B", body["user"].(map[string]any)["name"])

	status, body = s.call(http.MethodPut, "/api/v2/user/update", map[string]any{"mobile": "9"}, s.token)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("Name is a required field.", body["error"])
}

func (s *APISuite) TestContactLifecycle() {
	id := s.createContact("Bob Smith", "555", "work")

	status, body := s.call(http.MethodGet, "/api/v2/contact/"+id, nil, s.token)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("Bob Smith", body["contact"].(map[string]any)["Name"])

	status, _ = s.call(http.MethodPut, "/api/v2/edit_contact/"+id,
		map[string]any{"fname": "Robert", "lname": "Smith", "mobile": "556"}, s.token)
	s.Require().Equal(http.StatusOK, status)

	status, body = s.call(http.MethodGet, "/api/v2/edit_contact/"+id, nil, s.token)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("Robert Smith", body["contact"].(map[string]any)["Name"])

	status, body = s.call(http.MethodGet, "/api/v2/contacts/search?query=robert", nil, s.token)
	s.Require().Equal(http.StatusOK, status)
	s.Len(body["contacts"], 1)

	status, _ = s.call(http.MethodDelete, "/api/v2/remove_contact/"+id, nil, s.token)
	s.Require().Equal(http.StatusOK, status)

	status, body = s.call(http.MethodDelete, "/api/v2/remove_contact/"+id, nil, s.token)
	s.Equal(http.StatusNotFound, status)
	s.Equal("Contact not found in main list.", body["error"])

	status, body = s.call(http.MethodGet, "/api/v2/trash", nil, s.token)
	s.Require().Equal(http.StatusOK, status)
	s.Len(body["trashed_contacts"], 1)

	status, _ = s.call(http.MethodPost, "/api/v2/restore_contact/"+id, nil, s.token)
	s.Require().Equal(http.StatusOK, status)

	status, body = s.call(http.MethodGet, "/api/v2/contacts", nil, s.token)
	s.Require().Equal(http.StatusOK, status)
	s.Len(body["contacts"], 1)

	s.call(http.MethodDelete, "/api/v2/remove_contact/"+id, nil, s.token)
	status, _ = s.call(http.MethodDelete, "/api/v2/delete_permanently/"+id, nil, s.token)
	s.Equal(http.StatusOK, status)
	status, _ = s.call(http.MethodDelete, "/api/v2/delete_permanently/"+id, nil, s.token)
	s.Equal(http.StatusNotFound, status)

	status, _ = s.call(http.MethodDelete, "/api/v2/empty_trash", nil, s.token)
	s.Equal(http.StatusOK, status)
}

func (s *APISuite) TestValidationAndStatusMapping() {
	status, body := s.call(http.MethodPost, "/api/v2/create_contact", map[string]any{"name": "X"}, s.token)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("Name and mobile are required", body["error"])

	status, body = s.call(http.MethodGet, "/api/v2/contact/not-hex", nil, s.token)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("Invalid contact ID format.", body["error"])

	status, body = s.call(http.MethodGet, "/api/v2/contacts/search", nil, s.token)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("Missing search query parameter 'query'", body["error"])

	status, _ = s.call(http.MethodGet, "/api/v2/contacts/export?format=csv", nil, s.token)
	s.Equal(http.StatusBadRequest, status)
}

func (s *APISuite) TestMergeAcceptsStringsAndObjects() {
	a := s.createContact("Alice", "1", "x")
	b := s.createContact("Al", "2", "y")

	status, body := s.call(http.MethodPost, "/api/v2/merge_contacts",
		map[string]any{"contact_ids": []any{a, map[string]any{"_id": b}}}, s.token)
	s.Require().Equal(http.StatusCreated, status, body)
	merged := body["contact"].(map[string]any)
	s.Equal("Alice", merged["Name"])
	s.ElementsMatch([]any{"x", "y"}, merged["Labels"])

	status, body = s.call(http.MethodGet, "/api/v2/contacts", nil, s.token)
	s.Require().Equal(http.StatusOK, status)
	s.Len(body["contacts"], 1)

	status, _ = s.call(http.MethodPost, "/api/v2/merge_contacts", map[string]any{"contact_ids": []any{a}}, s.token)
	s.Equal(http.StatusBadRequest, status)
}

func (s *APISuite) TestExportJSONAttachment() {
	s.createContact("Alice", "1")
	status, raw := s.raw(http.MethodGet, "/api/v2/contacts/export", nil, s.token)
	s.Require().Equal(http.StatusOK, status)
	var rows []map[string]any
	s.Require().NoError(json.Unmarshal(raw, &rows))
	s.Len(rows, 1)
}

func (s *APISuite) TestLabels() {
	status, _ := s.call(http.MethodPost, "/api/v2/create_label", map[string]any{"label_name": "work"}, s.token)
	s.Require().Equal(http.StatusCreated, status)

	status, body := s.call(http.MethodPost, "/api/v2/create_label", map[string]any{"label_name": "work"}, s.token)
	s.Equal(http.StatusConflict, status)
	s.Equal("Label already exists", body["error"])

	status, _ = s.call(http.MethodPut, "/api/v2/edit_label", map[string]any{"old_label_name": "work", "new_label_name": "office"}, s.token)
	s.Require().Equal(http.StatusOK, status)

	status, body = s.call(http.MethodGet, "/api/v2/get_labels", nil, s.token)
	s.Require().Equal(http.StatusOK, status)
	s.Equal([]any{"office"}, body["labels"])

	status, _ = s.call(http.MethodPut, "/api/v2/edit_label", map[string]any{"old_label_name": "gone", "new_label_name": "x"}, s.token)
	s.Equal(http.StatusNotFound, status)

	status, _ = s.call(http.MethodDelete, "/api/v2/delete_label", map[string]any{"label_name": "office"}, s.token)
	s.Equal(http.StatusOK, status)
	status, _ = s.call(http.MethodDelete, "/api/v2/delete_label", map[string]any{"label_name": "office"}, s.token)
	s.Equal(http.StatusNotFound, status)
}

func TestUnknownRouteIs404(t *testing.T) {
	app := NewApp(AppOptions{CORSOrigins: "*"}, zap.NewNop(), nil)
	jm := utils.NewJWTManager("k", time.Hour)
	Setup(app, Deps{
		Accounts: &handlers.AccountHandler{},
		Contacts: &handlers.ContactHandler{},
		Trash:    &handlers.TrashHandler{},
		Labels:   &handlers.LabelHandler{},
		Auth:     middleware.JWTAuth(jm, nil, zap.NewNop()),
	})
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v2/nope", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
