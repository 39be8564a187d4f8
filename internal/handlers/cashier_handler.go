package handlers

import (
	"net/http"

	"go-pdv/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CashierHandler runs the cash drawer (caixa) of the calling operator.
type CashierHandler struct {
	cashiers *database.CashierRepository
}

func NewCashierHandler(cashiers *database.CashierRepository) *CashierHandler {
	return &CashierHandler{cashiers: cashiers}
}

type OpenCashierRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount"`
}

// --- POST: /api/cashiers/open ---
func (h *CashierHandler) Open(c *gin.Context) {
	var req OpenCashierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	op := operator(c)
	cashier, err := h.cashiers.Open(c.Request.Context(), op.CompanyID, op.UserID, req.InitialAmount)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Uint("cashier_id", cashier.ID).Uint("user_id", op.UserID).Str("initial", cashier.InitialAmount.StringFixed(2)).Msg("cashier opened")
	c.JSON(http.StatusCreated, cashier)
}

type CloseCashierRequest struct {
	FinalAmount decimal.Decimal `json:"final_amount"`
}

// --- POST: /api/cashiers/:id/close ---
func (h *CashierHandler) Close(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req CloseCashierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	if req.FinalAmount.IsNegative() {
		badRequest(c, "final_amount cannot be negative")
		return
	}

	ctx, companyID := c.Request.Context(), operator(c).CompanyID
	if _, err := h.cashiers.Close(ctx, companyID, id, req.FinalAmount); err != nil {
		respondError(c, err)
		return
	}
	summary, err := h.cashiers.Summary(ctx, companyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Uint("cashier_id", id).Str("difference", summary.Difference.Decimal.StringFixed(2)).Msg("cashier closed")
	c.JSON(http.StatusOK, summary)
}

type MovementRequest struct {
	Type        string          `json:"type" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// --- POST: /api/cashiers/:id/movements ---
// type is "suprimento" (money in) or "sangria" (money out).
func (h *CashierHandler) AddMovement(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	op := operator(c)
	m, err := h.cashiers.AddMovement(c.Request.Context(), op.CompanyID, id, op.UserID, req.Type, req.Amount, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// --- GET: /api/cashiers/current ---
func (h *CashierHandler) Current(c *gin.Context) {
	op := operator(c)
	cashier, err := h.cashiers.Current(c.Request.Context(), op.CompanyID, op.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cashier)
}

// --- GET: /api/cashiers/:id/summary ---
func (h *CashierHandler) Summary(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	summary, err := h.cashiers.Summary(c.Request.Context(), operator(c).CompanyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
