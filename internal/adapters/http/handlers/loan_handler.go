package handlers

import (
	"errors"
	"strconv"
	"time"

	"library-borrowing/internal/core/domain"
	"library-borrowing/internal/core/services"
	"library-borrowing/internal/pkg/pagination"
	"library-borrowing/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// LoanHandler handles borrowing record endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// IssueLoanBody represents issue loan body. Dates use YYYY-MM-DD; an empty
// issue date means today and an empty due date means issue date + 14 days.
type IssueLoanBody struct {
	MemberID  uint   `json:"member_id"`
	BookID    uint   `json:"book_id"`
	IssueDate string `json:"issue_date,omitempty"`
	DueDate   string `json:"due_date,omitempty"`
}

// Issue issues a loan directly
// @Summary Issue loan
// @Description Issue a book to a member without going through a request (Staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body IssueLoanBody true "Loan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /borrowings/issue [post]
func (h *LoanHandler) Issue(c *fiber.Ctx) error {
	var body IssueLoanBody
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if body.MemberID == 0 {
		return response.BadRequest(c, "Member ID is required")
	}
	if body.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}

	input := &services.IssueInput{
		MemberID: body.MemberID,
		BookID:   body.BookID,
	}

	if body.IssueDate != "" {
		issueDate, err := time.Parse(dateLayout, body.IssueDate)
		if err != nil {
			return response.BadRequest(c, "Invalid issue date, use YYYY-MM-DD")
		}
		input.IssueDate = issueDate
	}
	if body.DueDate != "" {
		dueDate, err := time.Parse(dateLayout, body.DueDate)
		if err != nil {
			return response.BadRequest(c, "Invalid due date, use YYYY-MM-DD")
		}
		input.DueDate = dueDate
	}

	loan, err := h.loanService.Issue(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrMemberNotFound):
			return response.NotFound(c, "Member not found")
		case errors.Is(err, domain.ErrRemoteUnavailable):
			return response.ServiceUnavailable(c, "Book catalog is unavailable")
		default:
			return response.InternalServerError(c, "Failed to issue loan")
		}
	}

	return response.Created(c, "Loan issued successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// List lists loans
// @Summary List loans
// @Description List all borrowing records with member and book names (Staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /borrowings [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.FromRequest(c)

	loans, total, err := h.loanService.List(c.Context(), params.Offset, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewPage(loans, params, total))
}

// GetByID gets a loan by ID
// @Summary Get loan by ID
// @Description Get a specific borrowing record (Staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /borrowings/{id} [get]
func (h *LoanHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	loan, err := h.loanService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// ReturnLoanBody represents return loan body
type ReturnLoanBody struct {
	ReturnDate string `json:"return_date,omitempty"`
}

// Return marks a loan returned
// @Summary Return loan
// @Description Mark a borrowing record as returned; fails if already returned (Staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body ReturnLoanBody false "Return data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrowings/{id}/return [put]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	var body ReturnLoanBody
	// Empty body is fine; return date defaults to today.
	_ = c.BodyParser(&body)

	var returnDate time.Time
	if body.ReturnDate != "" {
		returnDate, err = time.Parse(dateLayout, body.ReturnDate)
		if err != nil {
			return response.BadRequest(c, "Invalid return date, use YYYY-MM-DD")
		}
	}

	loan, err := h.loanService.Return(c.Context(), uint(id), returnDate)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrLoanAlreadyReturned):
			return response.Conflict(c, "Book already returned")
		default:
			return response.InternalServerError(c, "Failed to return loan")
		}
	}

	return response.Success(c, "Loan returned successfully", fiber.Map{
		"loan": loan.ToResponse(),
	})
}

// Delete removes a loan record
// @Summary Delete loan
// @Description Remove a borrowing record (Staff only)
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 204
// @Failure 400 {object} response.Response
// @Router /borrowings/{id} [delete]
func (h *LoanHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	if err := h.loanService.Delete(c.Context(), uint(id)); err != nil {
		return response.InternalServerError(c, "Failed to delete loan")
	}

	return response.NoContent(c)
}

// MyLoans lists the caller's own loans
// @Summary Get my loans
// @Description List borrowing records for the authenticated member
// @Tags Loans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param member_id query int true "Member profile ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /borrowings/my [get]
func (h *LoanHandler) MyLoans(c *fiber.Ctx) error {
	memberID, err := strconv.ParseUint(c.Query("member_id"), 10, 32)
	if err != nil || memberID == 0 {
		return response.BadRequest(c, "Member ID is required")
	}

	loans, err := h.loanService.ListByMember(c.Context(), uint(memberID))
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	return response.Success(c, "Loans retrieved successfully", loans)
}
