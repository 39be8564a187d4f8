package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"go-pdv/internal/ai"
	"go-pdv/internal/database"
	"go-pdv/internal/models"
	"go-pdv/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reports *database.ReportRepository
	agent   *ai.Agent
}

func NewReportHandler(reports *database.ReportRepository, agent *ai.Agent) *ReportHandler {
	return &ReportHandler{reports: reports, agent: agent}
}

// ReportData defines the shape of our analytics response
type ReportData struct {
	TotalRevenue string                 `json:"total_revenue"`
	TotalOrders  int64                  `json:"total_orders"`
	TopSelling   []database.TopSeller   `json:"top_selling"`
	Payments     []database.MethodTotal `json:"payments"`
	RecentSales  []models.Sale          `json:"recent_sales"`
}

// periodQuery reads ?start=YYYY-MM-DD&end=YYYY-MM-DD. Without both, the
// report covers all time. The end day is inclusive.
func periodQuery(c *gin.Context) (database.Period, bool) {
	start, end := c.Query("start"), c.Query("end")
	if start == "" && end == "" {
		return database.Period{}, true
	}
	from, err1 := time.ParseInLocation("2006-01-02", start, time.Local)
	to, err2 := time.ParseInLocation("2006-01-02", end, time.Local)
	if err1 != nil || err2 != nil || to.Before(from) {
		badRequest(c, "start and end must be YYYY-MM-DD dates, start first")
		return database.Period{}, false
	}
	return database.Period{Start: from, End: to.Add(24*time.Hour - time.Second)}, true
}

// --- GET: /api/reports ---
func (h *ReportHandler) Sales(c *gin.Context) {
	p, ok := periodQuery(c)
	if !ok {
		return
	}
	ctx, companyID := c.Request.Context(), operator(c).CompanyID

	// 1. Revenue and number of sales
	totals, err := h.reports.SalesReport(ctx, companyID, p)
	if err != nil {
		respondError(c, err)
		return
	}
	data := ReportData{TotalRevenue: totals.TotalRevenue.StringFixed(2), TotalOrders: totals.TotalCount}

	// 2. Top 5 best sellers
	if data.TopSelling, err = h.reports.TopSelling(ctx, companyID, p, 5); err != nil {
		respondError(c, err)
		return
	}

	// 3. How customers paid
	if data.Payments, err = h.reports.PaymentBreakdown(ctx, companyID, p); err != nil {
		respondError(c, err)
		return
	}

	// 4. Last 10 sales, newest first
	if data.RecentSales, err = h.reports.RecentSales(ctx, companyID, 10); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, data)
}

// --- GET: /api/reports/export ---
func (h *ReportHandler) Export(c *gin.Context) {
	p, ok := periodQuery(c)
	if !ok {
		return
	}
	sales, err := h.reports.Sales(c.Request.Context(), operator(c).CompanyID, p)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteSales(&buf, sales); err != nil {
		respondError(c, fmt.Errorf("write sales workbook: %w", err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=vendas-%s.xlsx", time.Now().Format("20060102")))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// --- GET: /api/reports/valuation ---
// Total monetary value of the physical inventory, grouped by category.
func (h *ReportHandler) Valuation(c *gin.Context) {
	v, err := h.reports.StockValuation(c.Request.Context(), operator(c).CompanyID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// --- POST: /api/ask ---
func (h *ReportHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Message is required")
		return
	}

	// 1. The assistant needs a Gemini key
	if !h.agent.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured"})
		return
	}

	// 2. Run the AI Agent
	reply, err := h.agent.Ask(c.Request.Context(), operator(c).CompanyID, req.Message)
	if err != nil {
		log.Error().Err(err).Msg("assistant failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Assistant failed to answer"})
		return
	}

	// 3. Return the Answer
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}
