package handlers

import (
	"github.com/fathima-sithara/contacts-service/internal/middleware"
	"github.com/fathima-sithara/contacts-service/internal/service"
	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

type LabelHandler struct {
	svc *service.LabelService
}

func NewLabelHandler(svc *service.LabelService) *LabelHandler {
	return &LabelHandler{svc: svc}
}

type labelReq struct {
	LabelName string `json:"label_name" validate:"required,max=64"`
}

func (h *LabelHandler) Create(c *fiber.Ctx) error {
	var req labelReq
	if err := bind(c, &req, "Missing 'label_name' field"); err != nil {
		return err
	}
	username := middleware.Username(c)
	if h.svc.Exists(c.UserContext(), username, req.LabelName) {
		return fiber.NewError(fiber.StatusConflict, "Label already exists")
	}
	if err := h.svc.Create(c.UserContext(), username, req.LabelName); err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, "Label created successfully.", nil)
}

func (h *LabelHandler) List(c *fiber.Ctx) error {
	labels, err := h.svc.List(c.UserContext(), middleware.Username(c))
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"labels": labels})
}

func (h *LabelHandler) Delete(c *fiber.Ctx) error {
	var req labelReq
	if err := bind(c, &req, "Missing 'label_name' field"); err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), middleware.Username(c), req.LabelName); err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Label deleted successfully.", nil)
}

type editLabelReq struct {
	OldLabelName string `json:"old_label_name" validate:"required"`
	NewLabelName string `json:"new_label_name" validate:"required,max=64"`
}

func (h *LabelHandler) Edit(c *fiber.Ctx) error {
	var req editLabelReq
	if err := bind(c, &req, "Missing 'old_label_name' or 'new_label_name' field"); err != nil {
		return err
	}
	username := middleware.Username(c)
	if !h.svc.Exists(c.UserContext(), username, req.OldLabelName) {
		return fiber.NewError(fiber.StatusNotFound, "Label not found")
	}
	if err := h.svc.Rename(c.UserContext(), username, req.OldLabelName, req.NewLabelName); err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Label updated successfully.", nil)
}
