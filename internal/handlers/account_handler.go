package handlers

import (
	"context"
	"io"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/middleware"
	"github.com/fathima-sithara/contacts-service/internal/models"
	"github.com/fathima-sithara/contacts-service/internal/service"
	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxPhotoBytes = 5 << 20

type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type AccountHandler struct {
	svc     *service.AccountService
	jwt     *utils.JWTManager
	revoker Revoker
	log     *zap.Logger
}

// NewAccountHandler wires the auth and profile routes. revoker may be nil, in
// which case logout does not invalidate the token server side.
func NewAccountHandler(svc *service.AccountService, jm *utils.JWTManager, revoker Revoker, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{svc: svc, jwt: jm, revoker: revoker, log: logger}
}

func (h *AccountHandler) Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "Welcome to the Contacts API!"})
}

type signupReq struct {
	Image    string `json:"image"`
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required"`
	Mobile   string `json:"mobile"`
}

func (h *AccountHandler) Signup(c *fiber.Ctx) error {
	var req signupReq
	if err := bind(c, &req, "Missing required fields"); err != nil {
		return err
	}
	if h.svc.CheckExists(c.UserContext(), req.Username) {
		return fiber.NewError(fiber.StatusConflict, "Username already exists.")
	}
	if err := h.svc.Create(c.UserContext(), req.Username, req.Password, req.Name, req.Image, req.Mobile); err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, "User created successfully.", nil)
}

type signinReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *AccountHandler) Signin(c *fiber.Ctx) error {
	var req signinReq
	if err := bind(c, &req, "Missing required fields"); err != nil {
		return err
	}
	if !h.svc.Validate(c.UserContext(), req.Username, req.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid username or password")
	}
	token, _, err := h.jwt.Generate(req.Username)
	if err != nil {
		h.log.Error("sign token failed", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "internal server error")
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Login successful", fiber.Map{"token": token})
}

type checkUsernameReq struct {
	Username string `json:"username" validate:"required"`
}

func (h *AccountHandler) CheckUsername(c *fiber.Ctx) error {
	var req checkUsernameReq
	if err := bind(c, &req, "Missing 'username' field"); err != nil {
		return err
	}
	exists := h.svc.CheckExists(c.UserContext(), req.Username)
	msg := "Username is available"
	if exists {
		msg = "Username already taken"
	}
	return c.JSON(fiber.Map{"exists": exists, "message": msg})
}

func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	if claims := middleware.Claims(c); claims != nil && h.revoker != nil && claims.ExpiresAt != nil {
		if err := h.revoker.Revoke(c.UserContext(), claims.ID, claims.ExpiresAt.Time); err != nil {
			h.log.Error("revoke token failed", zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "An error occurred while logging out.")
		}
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Logged out successfully", nil)
}

func userInfo(a *models.Account) fiber.Map {
	return fiber.Map{"photo": a.Photo, "name": a.Name, "username": a.Username, "mobile": a.Contact}
}

func (h *AccountHandler) Profile(c *fiber.Ctx) error {
	acc, err := h.svc.Profile(c.UserContext(), middleware.Username(c))
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"user": userInfo(acc)})
}

type updateProfileReq struct {
	Image  string `json:"image"`
	Name   string `json:"name" validate:"required"`
	Mobile string `json:"mobile"`
}

func (h *AccountHandler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileReq
	if err := bind(c, &req, "Name is a required field."); err != nil {
		return err
	}
	username := middleware.Username(c)
	if err := h.svc.UpdateProfile(c.UserContext(), username, req.Name, req.Image, req.Mobile); err != nil {
		return fail(err)
	}
	acc, err := h.svc.Profile(c.UserContext(), username)
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Profile updated successfully.", fiber.Map{"user": userInfo(acc)})
}

func (h *AccountHandler) UploadPhoto(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing 'file' field")
	}
	if fh.Size > maxPhotoBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "Photo is too large.")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file.")
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPhotoBytes))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file.")
	}

	acc, err := h.svc.UploadPhoto(c.UserContext(), middleware.Username(c), data)
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Photo updated successfully.", fiber.Map{"user": userInfo(acc)})
}
