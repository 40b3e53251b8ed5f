package handlers

import (
	"errors"
	"strconv"

	"library-borrowing/internal/core/domain"
	"library-borrowing/internal/core/services"
	"library-borrowing/internal/pkg/pagination"
	"library-borrowing/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RequestHandler handles book request endpoints
type RequestHandler struct {
	requestService *services.RequestService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
	}
}

// CreateRequestBody represents create request body
type CreateRequestBody struct {
	BookID uint `json:"book_id"`
}

// Create submits a new book request
// @Summary Create book request
// @Description Submit a request to borrow a book; the book must exist in the catalog
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateRequestBody true "Request data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var body CreateRequestBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}

	requesterID, ok := c.Locals("userID").(uint)
	if !ok || requesterID == 0 {
		return response.Unauthorized(c, "Unauthorized")
	}

	request, err := h.requestService.Create(c.Context(), requesterID, body.BookID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrRemoteUnavailable):
			return response.ServiceUnavailable(c, "Book catalog is unavailable")
		default:
			return response.InternalServerError(c, "Failed to create request")
		}
	}

	return response.Created(c, "Request created successfully", fiber.Map{
		"request": request.ToResponse(),
	})
}

// List lists book requests
// @Summary List book requests
// @Description List all book requests with requester and book names (Staff only)
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	params := pagination.FromRequest(c)

	requests, total, err := h.requestService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved successfully", pagination.NewPage(requests, params, total))
}

// My lists the caller's own requests
// @Summary Get my requests
// @Description List the authenticated user's book requests
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /requests/my [get]
func (h *RequestHandler) My(c *fiber.Ctx) error {
	requesterID, ok := c.Locals("userID").(uint)
	if !ok || requesterID == 0 {
		return response.Unauthorized(c, "Unauthorized")
	}

	requests, err := h.requestService.ListByRequester(c.Context(), requesterID)
	if err != nil {
		return response.InternalServerError(c, "Failed to list requests")
	}

	return response.Success(c, "Requests retrieved successfully", requests)
}

// Approve approves a pending request and issues the loan
// @Summary Approve book request
// @Description Approve a pending request; issues a 14-day loan for the linked member (Staff only)
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /requests/{id}/approve [put]
func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.Approve(c.Context(), uint(id))
	if err != nil {
		return h.mapDecisionError(c, err, "approve")
	}

	return response.Success(c, "Request approved successfully", fiber.Map{
		"request": request.ToResponse(),
	})
}

// Reject rejects a pending request
// @Summary Reject book request
// @Description Reject a pending request (Staff only)
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /requests/{id}/reject [put]
func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	request, err := h.requestService.Reject(c.Context(), uint(id))
	if err != nil {
		return h.mapDecisionError(c, err, "reject")
	}

	return response.Success(c, "Request rejected successfully", fiber.Map{
		"request": request.ToResponse(),
	})
}

func (h *RequestHandler) mapDecisionError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrRequestNotFound):
		return response.NotFound(c, "Request not found")
	case errors.Is(err, domain.ErrRequestNotPending):
		return response.Conflict(c, "Request is not in pending state")
	case errors.Is(err, domain.ErrProfileNotLinked):
		return response.Conflict(c, "Requester has no linked member profile")
	case errors.Is(err, domain.ErrBookNotFound):
		return response.NotFound(c, "Book not found")
	case errors.Is(err, domain.ErrMemberNotFound):
		return response.NotFound(c, "Member not found")
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return response.ServiceUnavailable(c, "A required service is unavailable")
	default:
		return response.InternalServerError(c, "Failed to "+action+" request")
	}
}
