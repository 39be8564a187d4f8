package handlers

import (
	"net/http"

	"go-pdv/internal/checkout"
	"go-pdv/internal/sale"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// PDVHandler exposes the operator's sale in progress. Every mutating call
// answers with the full view so the till redraws from one payload.
type PDVHandler struct {
	till *checkout.Service
}

func NewPDVHandler(till *checkout.Service) *PDVHandler {
	return &PDVHandler{till: till}
}

func (h *PDVHandler) reply(c *gin.Context, v checkout.View, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// --- GET: /api/pdv/session ---
func (h *PDVHandler) Session(c *gin.Context) {
	v, err := h.till.Current(c.Request.Context(), operator(c))
	h.reply(c, v, err)
}

// AddItemRequest takes either a product picked from search or a scanned code.
type AddItemRequest struct {
	ProductID uint   `json:"product_id"`
	Code      string `json:"code"`
}

// --- POST: /api/pdv/items ---
func (h *PDVHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.ProductID == 0 && req.Code == "") {
		badRequest(c, "product_id or code is required")
		return
	}
	ctx, op := c.Request.Context(), operator(c)
	if req.ProductID != 0 {
		v, err := h.till.AddProduct(ctx, op, req.ProductID)
		h.reply(c, v, err)
		return
	}
	v, err := h.till.AddByCode(ctx, op, req.Code)
	h.reply(c, v, err)
}

type QuantityRequest struct {
	Delta decimal.Decimal `json:"delta"`
}

// --- PATCH: /api/pdv/items/:id ---
func (h *PDVHandler) ChangeQuantity(c *gin.Context) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Delta.IsZero() {
		badRequest(c, "delta must be a non-zero number")
		return
	}
	v, err := h.till.ChangeQuantity(c.Request.Context(), operator(c), c.Param("id"), req.Delta)
	h.reply(c, v, err)
}

// --- DELETE: /api/pdv/items/:id ---
func (h *PDVHandler) RemoveItem(c *gin.Context) {
	v, err := h.till.RemoveItem(c.Request.Context(), operator(c), c.Param("id"))
	h.reply(c, v, err)
}

type DiscountRequest struct {
	Kind   sale.DiscountKind `json:"kind" binding:"required"`
	Amount decimal.Decimal   `json:"amount"`
}

// --- PUT: /api/pdv/items/:id/discount ---
func (h *PDVHandler) ApplyItemDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "kind and amount are required")
		return
	}
	v, err := h.till.ApplyItemDiscount(c.Request.Context(), operator(c), c.Param("id"), req.Kind, req.Amount)
	h.reply(c, v, err)
}

// --- DELETE: /api/pdv/items/:id/discount ---
func (h *PDVHandler) RemoveItemDiscount(c *gin.Context) {
	v, err := h.till.RemoveItemDiscount(c.Request.Context(), operator(c), c.Param("id"))
	h.reply(c, v, err)
}

// --- PUT: /api/pdv/discount ---
func (h *PDVHandler) ApplySaleDiscount(c *gin.Context) {
	var req DiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "kind and amount are required")
		return
	}
	v, err := h.till.ApplySaleDiscount(c.Request.Context(), operator(c), req.Kind, req.Amount)
	h.reply(c, v, err)
}

// --- DELETE: /api/pdv/discount ---
func (h *PDVHandler) RemoveSaleDiscount(c *gin.Context) {
	v, err := h.till.RemoveSaleDiscount(c.Request.Context(), operator(c))
	h.reply(c, v, err)
}

type PaymentRequest struct {
	Method sale.Method     `json:"method" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// --- POST: /api/pdv/payments/full ---
func (h *PDVHandler) PayFull(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "method is required")
		return
	}
	v, err := h.till.PayFull(c.Request.Context(), operator(c), req.Method)
	h.reply(c, v, err)
}

// --- POST: /api/pdv/payments/partial ---
func (h *PDVHandler) PayPartial(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "method and amount are required")
		return
	}
	v, err := h.till.PayPartial(c.Request.Context(), operator(c), req.Method, req.Amount)
	h.reply(c, v, err)
}

// --- DELETE: /api/pdv/payments/:id ---
func (h *PDVHandler) RemovePayment(c *gin.Context) {
	v, err := h.till.RemovePayment(c.Request.Context(), operator(c), c.Param("id"))
	h.reply(c, v, err)
}

type CustomerSelection struct {
	CustomerID uint `json:"customer_id" binding:"required"`
}

// --- PUT: /api/pdv/customer ---
func (h *PDVHandler) SelectCustomer(c *gin.Context) {
	var req CustomerSelection
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "customer_id is required")
		return
	}
	v, err := h.till.SelectCustomer(c.Request.Context(), operator(c), req.CustomerID)
	h.reply(c, v, err)
}

// --- DELETE: /api/pdv/customer ---
func (h *PDVHandler) ClearCustomer(c *gin.Context) {
	v, err := h.till.ClearCustomer(c.Request.Context(), operator(c))
	h.reply(c, v, err)
}

// --- POST: /api/pdv/finalize ---
func (h *PDVHandler) Finalize(c *gin.Context) {
	s, err := h.till.Finalize(c.Request.Context(), operator(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Sale successful!",
		"number":  s.Number,
		"total":   s.TotalAmount,
		"change":  s.ChangeDue,
		"sale":    s,
	})
}

// --- POST: /api/pdv/cancel ---
func (h *PDVHandler) Cancel(c *gin.Context) {
	if err := h.till.Cancel(c.Request.Context(), operator(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sale cancelled"})
}
