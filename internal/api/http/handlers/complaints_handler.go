package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/complain-service/internal/api/dto"
	"github.com/ticketdesk/complain-service/internal/auth"
	"github.com/ticketdesk/complain-service/internal/domain"
	"github.com/ticketdesk/complain-service/internal/policy"
	"github.com/ticketdesk/complain-service/internal/service"
	apperrors "github.com/ticketdesk/complain-service/pkg/util/errorutil"
)

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	service   ComplaintService
	validator Validator
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService ComplaintService, validator Validator) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService, validator: validator}
}

// Create POST /complain.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthenticated.")
	}
	var req dto.CreateComplaintRequest
	if err := decode(c, h.validator, &req); err != nil {
		return err
	}

	complaint, err := h.service.Create(c.UserContext(), principal.User, service.CreateComplaintInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    domain.ComplaintPriority(req.Priority),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Envelope{Message: "Complaint created", Data: complaintResponse(complaint)})
}

// List GET /complain?search&status&priority.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthenticated.")
	}

	input := service.ListComplaintsInput{Search: c.Query("search")}
	if status := c.Query("status"); status != "" {
		s := domain.ComplaintStatus(status)
		input.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := domain.ComplaintPriority(priority)
		input.Priority = &p
	}

	complaints, err := h.service.List(c.UserContext(), principal.User, input)
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintResponse(&complaints[i]))
	}
	return c.JSON(dto.Envelope{Message: "Complaints retrieved", Data: items})
}

// Show GET /complain/:code.
func (h *ComplaintsHandler) Show(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthenticated.")
	}

	complaint, err := h.service.GetByCode(c.UserContext(), principal.User, c.Params("code"))
	if err != nil {
		return err
	}
	return c.JSON(dto.Envelope{Message: "Complaint detail", Data: complaintResponse(complaint)})
}

// Reply POST /complain-reply/:code. Admins must send a status; for everyone
// else the status field is not part of the payload.
func (h *ComplaintsHandler) Reply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthenticated.")
	}

	var input service.ReplyInput
	if policy.CanSetStatus(principal.User) {
		var req dto.AdminReplyRequest
		if err := decode(c, h.validator, &req); err != nil {
			return err
		}
		status := domain.ComplaintStatus(req.Status)
		input = service.ReplyInput{Content: req.Content, Status: &status}
	} else {
		var req dto.UserReplyRequest
		if err := decode(c, h.validator, &req); err != nil {
			return err
		}
		input = service.ReplyInput{Content: req.Content}
	}

	complaint, err := h.service.Reply(c.UserContext(), principal.User, c.Params("code"), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.Envelope{Message: "Reply created", Data: complaintResponse(complaint)})
}
