package handlers

import (
	"github.com/fathima-sithara/contacts-service/internal/middleware"
	"github.com/fathima-sithara/contacts-service/internal/service"
	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

type TrashHandler struct {
	svc *service.ContactService
}

func NewTrashHandler(svc *service.ContactService) *TrashHandler {
	return &TrashHandler{svc: svc}
}

func (h *TrashHandler) List(c *fiber.Ctx) error {
	items, err := h.svc.ListTrash(c.UserContext(), middleware.Username(c))
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"trashed_contacts": items})
}

func (h *TrashHandler) Restore(c *fiber.Ctx) error {
	if err := h.svc.RestoreContact(c.UserContext(), middleware.Username(c), c.Params("id")); err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Contact restored successfully.", nil)
}

func (h *TrashHandler) DeletePermanently(c *fiber.Ctx) error {
	if err := h.svc.DeletePermanently(c.UserContext(), middleware.Username(c), c.Params("id")); err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Contact permanently deleted.", nil)
}

func (h *TrashHandler) Empty(c *fiber.Ctx) error {
	n, err := h.svc.EmptyTrash(c.UserContext(), middleware.Username(c))
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Trash emptied successfully.", fiber.Map{"deleted": n})
}
