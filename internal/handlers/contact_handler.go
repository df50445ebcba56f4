package handlers

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/fathima-sithara/contacts-service/internal/middleware"
	"github.com/fathima-sithara/contacts-service/internal/models"
	"github.com/fathima-sithara/contacts-service/internal/service"
	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
)

type ContactHandler struct {
	svc *service.ContactService
}

func NewContactHandler(svc *service.ContactService) *ContactHandler {
	return &ContactHandler{svc: svc}
}

func (h *ContactHandler) List(c *fiber.Ctx) error {
	list, err := h.svc.ListContacts(c.UserContext(), middleware.Username(c))
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"contacts": list})
}

type createContactReq struct {
	Image    string   `json:"image"`
	Name     string   `json:"name" validate:"required"`
	Mobile   string   `json:"mobile" validate:"required"`
	Email    string   `json:"email"`
	JobTitle string   `json:"job_title"`
	Company  string   `json:"company"`
	Labels   []string `json:"labels"`
}

func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var req createContactReq
	if err := bind(c, &req, "Name and mobile are required"); err != nil {
		return err
	}
	created, err := h.svc.AddContact(c.UserContext(), middleware.Username(c), models.ContactFields{
		Photo:   req.Image,
		Name:    req.Name,
		Contact: req.Mobile,
		Email:   req.Email,
		Job:     req.JobTitle,
		Company: req.Company,
		Labels:  req.Labels,
	}, utils.NowUTC())
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, "Contact added successfully.", fiber.Map{"contact": created})
}

func (h *ContactHandler) Get(c *fiber.Ctx) error {
	contact, err := h.svc.GetContact(c.UserContext(), middleware.Username(c), c.Params("id"))
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"contact": contact})
}

// updateContactReq is the edit form: the display name is sent split in two.
type updateContactReq struct {
	FName    string   `json:"fname"`
	LName    string   `json:"lname"`
	Mobile   string   `json:"mobile" validate:"required"`
	Email    string   `json:"email"`
	JobTitle string   `json:"job_title"`
	Company  string   `json:"company"`
	Labels   []string `json:"labels"`
}

func (h *ContactHandler) Update(c *fiber.Ctx) error {
	const msg = "Name and Mobile are required fields."
	var req updateContactReq
	if err := bind(c, &req, msg); err != nil {
		return err
	}
	name := strings.TrimSpace(req.FName + " " + req.LName)
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}
	err := h.svc.UpdateContact(c.UserContext(), middleware.Username(c), c.Params("id"), models.ContactFields{
		Name:    name,
		Contact: req.Mobile,
		Email:   req.Email,
		Job:     req.JobTitle,
		Company: req.Company,
		Labels:  req.Labels,
	})
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Contact updated successfully.", nil)
}

// contactRef accepts either "hex" or {"_id": "hex"}.
type contactRef string

func (r *contactRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '{' {
		var obj struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return err
		}
		*r = contactRef(obj.ID)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*r = contactRef(s)
	return nil
}

type contactIDsReq struct {
	ContactIDs []contactRef `json:"contact_ids"`
}

func (r contactIDsReq) ids() []string {
	out := make([]string, len(r.ContactIDs))
	for i, id := range r.ContactIDs {
		out[i] = string(id)
	}
	return out
}

func (h *ContactHandler) Merge(c *fiber.Ctx) error {
	var req contactIDsReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "A list of at least two contact IDs is required to merge.")
	}
	merged, err := h.svc.MergeContacts(c.UserContext(), middleware.Username(c), req.ids())
	if err != nil {
		if merged != nil {
			// Merged contact exists but sources are still listed; the client
			// can finish with /contacts/remove.
			return c.Status(statusOf(err)).JSON(fiber.Map{
				"success": false,
				"error":   service.MessageOf(err),
				"contact": merged,
			})
		}
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, "Contacts merged successfully.", fiber.Map{"contact": merged})
}

func (h *ContactHandler) RemoveMany(c *fiber.Ctx) error {
	var req contactIDsReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if err := h.svc.RemoveContacts(c.UserContext(), middleware.Username(c), req.ids()); err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Contacts removed successfully.", nil)
}

func (h *ContactHandler) MoveToTrash(c *fiber.Ctx) error {
	if err := h.svc.MoveToTrash(c.UserContext(), middleware.Username(c), c.Params("id")); err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "Contact moved to trash successfully.", nil)
}

func (h *ContactHandler) Search(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Missing search query parameter 'query'")
	}
	results, err := h.svc.SearchContacts(c.UserContext(), middleware.Username(c), query)
	if err != nil {
		return fail(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, "", fiber.Map{"contacts": results})
}

type exportQuery struct {
	Format string `query:"format" json:"format" validate:"omitempty,oneof=json yaml"`
}

func (h *ContactHandler) Export(c *fiber.Ctx) error {
	var q exportQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}
	if msg := utils.ValidateStruct(q); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}
	exp, err := h.svc.ExportContacts(c.UserContext(), middleware.Username(c), q.Format)
	if err != nil {
		return fail(err)
	}
	c.Set(fiber.HeaderContentType, exp.ContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment;filename="+exp.Filename)
	return c.Status(fiber.StatusOK).Send(exp.Body)
}
