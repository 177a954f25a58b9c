package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/gtd_paygate/internal/middleware"
	"github.com/GTDGit/gtd_paygate/internal/models"
	"github.com/GTDGit/gtd_paygate/internal/service"
	"github.com/GTDGit/gtd_paygate/internal/utils"
)

// IdempotencyHeader lets clients safely retry POST /payments.
const IdempotencyHeader = "Idempotency-Key"

// PaymentHandler handles payment HTTP endpoints.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePayment handles POST /payments. Approved payments answer 201,
// rejected ones 402; both carry the record.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req models.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.AbortWithError(c, utils.ErrInvalidRequest)
		return
	}

	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	res, err := h.paymentService.CreatePayment(c.Request.Context(), &req, principal, c.GetHeader(IdempotencyHeader))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}

	if res.Replayed {
		c.Header("Idempotent-Replayed", "true")
	}
	utils.JSON(c, createStatus(res.Decision), res.Payment)
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	p, err := h.paymentService.GetPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	utils.JSON(c, 200, p)
}

// ReversePayment handles POST /payments/:id/reverse
func (h *PaymentHandler) ReversePayment(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	p, err := h.paymentService.ReversePayment(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	utils.JSON(c, 200, p)
}

// CancelPayment handles POST /payments/:id/cancel
func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	principal, ok := requirePrincipal(c)
	if !ok {
		return
	}

	p, err := h.paymentService.CancelPayment(c.Request.Context(), c.Param("id"), principal)
	if err != nil {
		utils.AbortWithError(c, err)
		return
	}
	utils.JSON(c, 200, p)
}

func requirePrincipal(c *gin.Context) (*models.Principal, bool) {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		utils.AbortWithError(c, utils.ErrTokenMissing)
		return nil, false
	}
	return principal, true
}

// createStatus maps the creation decision to the response code. Replays use
// the original decision so a retried request gets the code it first got.
func createStatus(decision models.PaymentStatus) int {
	switch decision {
	case models.PaymentApproved:
		return 201
	case models.PaymentRejected:
		return 402
	default:
		// Pending decisions are accepted but not yet approved.
		return 202
	}
}
