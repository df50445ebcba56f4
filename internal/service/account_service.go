package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fathima-sithara/contacts-service/internal/metrics"
	"github.com/fathima-sithara/contacts-service/internal/models"
	"github.com/fathima-sithara/contacts-service/internal/repository"
	"github.com/fathima-sithara/contacts-service/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const photoWidth = 256

// PhotoStore keeps profile photos. Upload returns a public URL, or "" when
// objects are private and must be read through PresignURL.
type PhotoStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type AccountService struct {
	repo       repository.AccountRepository
	photos     PhotoStore
	cost       int
	presignTTL time.Duration
	dummyHash  []byte
	metrics    *metrics.Metrics
	log        *zap.Logger
}

type AccountOptions struct {
	BcryptCost int
	PresignTTL time.Duration
}

// NewAccountService builds the service. photos may be nil, in which case
// photo upload is unavailable and stored keys are not resolved.
func NewAccountService(repo repository.AccountRepository, photos PhotoStore, opts AccountOptions, m *metrics.Metrics, logger *zap.Logger) (*AccountService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.PresignTTL == 0 {
		opts.PresignTTL = 15 * time.Minute
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("contacts-service-dummy"), opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &AccountService{
		repo:       repo,
		photos:     photos,
		cost:       opts.BcryptCost,
		presignTTL: opts.PresignTTL,
		dummyHash:  dummy,
		metrics:    m,
		log:        logger,
	}, nil
}

// CheckExists reports whether username is taken. Store errors are logged and
// reported as not taken; Create still guards with the unique index.
func (s *AccountService) CheckExists(ctx context.Context, username string) bool {
	_, err := s.repo.FindByUsername(ctx, username)
	if err == nil {
		return true
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.log.Error("check username failed", zap.String("username", username), zap.Error(err))
	}
	return false
}

func (s *AccountService) Create(ctx context.Context, username, password, name, photo, mobile string) (err error) {
	defer func() { s.metrics.Observe("create_account", err) }()

	if strings.TrimSpace(username) == "" || password == "" || strings.TrimSpace(name) == "" {
		return validationError("Missing required fields")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		s.log.Error("hash password failed", zap.Error(err))
		return storeError("An error occurred while creating the user.", err)
	}
	acc := &models.Account{
		Username: username,
		Name:     name,
		Password: hash,
		Photo:    photo,
		Contact:  mobile,
	}
	err = s.repo.Create(ctx, acc)
	if errors.Is(err, repository.ErrDuplicate) {
		return conflictError("Username already exists.", err)
	}
	if err != nil {
		s.log.Error("create user failed", zap.String("username", username), zap.Error(err))
		return storeError("An error occurred while creating the user.", err)
	}
	return nil
}

// Validate checks the password. Unknown users are compared against a dummy
// hash so both paths cost one bcrypt comparison.
func (s *AccountService) Validate(ctx context.Context, username, password string) (ok bool) {
	defer func() {
		var err error
		if !ok {
			err = errInvalidCredentials
		}
		s.metrics.Observe("validate_account", err)
	}()

	acc, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error("validate user failed", zap.String("username", username), zap.Error(err))
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword(acc.Password, []byte(password)) == nil
}

var errInvalidCredentials = errors.New("invalid credentials")

func (s *AccountService) Profile(ctx context.Context, username string) (*models.Account, error) {
	acc, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("User not found")
	}
	if err != nil {
		s.log.Error("fetch profile failed", zap.String("username", username), zap.Error(err))
		return nil, storeError("An error occurred while fetching the profile.", err)
	}
	if acc.PhotoKey != "" && s.photos != nil {
		url, perr := s.photos.PresignURL(ctx, acc.PhotoKey, s.presignTTL)
		if perr != nil {
			s.log.Warn("presign photo failed", zap.String("key", acc.PhotoKey), zap.Error(perr))
		} else {
			acc.Photo = url
		}
	}
	return acc, nil
}

// UpdateProfile always sets the name; photo and mobile only when non-empty.
func (s *AccountService) UpdateProfile(ctx context.Context, username, name, photo, mobile string) (err error) {
	defer func() { s.metrics.Observe("update_profile", err) }()

	if strings.TrimSpace(name) == "" {
		return validationError("Name is a required field.")
	}
	modified, err := s.repo.UpdateProfile(ctx, username, models.ProfileUpdate{Name: name, Photo: photo, Contact: mobile})
	if err != nil {
		s.log.Error("update profile failed", zap.String("username", username), zap.Error(err))
		return storeError("An unexpected error occurred while updating the profile.", err)
	}
	if !modified {
		return notFoundError("User not found or no changes made.")
	}
	return nil
}

// UploadPhoto scales the image to a fixed width JPEG, stores it under
// <username>/<uuid>.jpg and points the profile at it. The key is kept only for
// private buckets, where reads go through a presigned URL.
func (s *AccountService) UploadPhoto(ctx context.Context, username string, data []byte) (acc *models.Account, err error) {
	defer func() { s.metrics.Observe("upload_photo", err) }()

	if s.photos == nil {
		return nil, storeError("Photo storage is not configured.", nil)
	}
	current, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("User not found")
	}
	if err != nil {
		s.log.Error("fetch profile failed", zap.String("username", username), zap.Error(err))
		return nil, storeError("An error occurred while uploading the photo.", err)
	}

	jpeg, err := resizePhoto(data)
	if err != nil {
		return nil, validationError("Uploaded file is not a supported image.")
	}

	key := username + "/" + utils.NewID() + ".jpg"
	url, err := s.photos.Upload(ctx, key, "image/jpeg", jpeg)
	if err != nil {
		s.log.Error("upload photo failed", zap.String("key", key), zap.Error(err))
		return nil, storeError("An error occurred while uploading the photo.", err)
	}

	upd := models.ProfileUpdate{Name: current.Name, Photo: url}
	if url == "" {
		upd.PhotoKey = key
	}
	if _, err := s.repo.UpdateProfile(ctx, username, upd); err != nil {
		s.log.Error("save photo failed", zap.String("username", username), zap.Error(err))
		return nil, storeError("An error occurred while uploading the photo.", err)
	}
	return s.Profile(ctx, username)
}

func resizePhoto(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Dx() > photoWidth {
		img = imaging.Resize(img, photoWidth, 0, imaging.Lanczos)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
