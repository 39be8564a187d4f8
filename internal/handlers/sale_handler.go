package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"go-pdv/internal/database"
	"go-pdv/internal/receipt"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	sales     *database.SaleRepository
	storeName string
}

func NewSaleHandler(sales *database.SaleRepository, storeName string) *SaleHandler {
	return &SaleHandler{sales: sales, storeName: storeName}
}

func (h *SaleHandler) number(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil || n < 1 {
		badRequest(c, "Invalid sale number")
		return 0, false
	}
	return n, true
}

// --- GET: /api/sales/:number ---
func (h *SaleHandler) Get(c *gin.Context) {
	n, ok := h.number(c)
	if !ok {
		return
	}
	s, err := h.sales.FindByNumber(c.Request.Context(), operator(c).CompanyID, n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// --- GET: /api/sales/:number/receipt ---
func (h *SaleHandler) Receipt(c *gin.Context) {
	n, ok := h.number(c)
	if !ok {
		return
	}
	s, err := h.sales.FindByNumber(c.Request.Context(), operator(c).CompanyID, n)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := receipt.Render(&buf, h.storeName, s); err != nil {
		respondError(c, fmt.Errorf("render receipt %d: %w", n, err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=cupom-%06d.pdf", n))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
