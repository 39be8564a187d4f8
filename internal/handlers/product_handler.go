package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"go-pdv/internal/checkout"
	"go-pdv/internal/database"
	"go-pdv/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

type ProductHandler struct {
	products  *database.ProductRepository
	till      *checkout.Service
	uploadDir string
	baseURL   string
}

func NewProductHandler(products *database.ProductRepository, till *checkout.Service, uploadDir, baseURL string) *ProductHandler {
	return &ProductHandler{products: products, till: till, uploadDir: uploadDir, baseURL: baseURL}
}

// --- GET: List all products of the company ---
func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), operator(c).CompanyID)
	if err != nil {
		respondError(c, err)
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// --- GET: /api/products/search?q= ---
// Only sellable products come back. A search overtaken by a newer one from
// the same till answers 409 so the screen keeps the newer results.
func (h *ProductHandler) Search(c *gin.Context) {
	found, err := h.till.SearchProducts(c.Request.Context(), operator(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// --- GET: /api/products/scan/:code ---
func (h *ProductHandler) Scan(c *gin.Context) {
	p, err := h.products.FindByCode(c.Request.Context(), operator(c).CompanyID, c.Param("code"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type ProductRequest struct {
	Code          string          `json:"code" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	Category      string          `json:"category"`
	StockQuantity decimal.Decimal `json:"stock_quantity"`
	Unit          string          `json:"unit"`
	ImageURL      string          `json:"image_url"`
}

// --- POST: Add a new product ---
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	// 1. Parse JSON Input
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	if !req.Price.IsPositive() || req.CostPrice.IsNegative() || req.StockQuantity.IsNegative() {
		badRequest(c, "Price must be positive; cost and stock cannot be negative")
		return
	}
	if req.Unit == "" {
		req.Unit = "UN"
	}

	// 2. Save to DB
	p := models.Product{
		CompanyID:     operator(c).CompanyID,
		Code:          strings.TrimSpace(req.Code),
		Name:          strings.TrimSpace(req.Name),
		Price:         req.Price.Round(2),
		CostPrice:     req.CostPrice.Round(2),
		Category:      req.Category,
		StockQuantity: req.StockQuantity,
		Unit:          strings.ToUpper(req.Unit),
		Active:        true,
		ImageURL:      req.ImageURL,
	}
	if err := h.products.Create(c.Request.Context(), &p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ProductUpdate carries only the fields the client wants changed.
type ProductUpdate struct {
	Name          *string          `json:"name"`
	Price         *decimal.Decimal `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	Category      *string          `json:"category"`
	StockQuantity *decimal.Decimal `json:"stock_quantity"`
	Unit          *string          `json:"unit"`
	Active        *bool            `json:"active"`
	ImageURL      *string          `json:"image_url"`
}

func (u ProductUpdate) fields() (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if u.Name != nil {
		out["name"] = strings.TrimSpace(*u.Name)
	}
	if u.Price != nil {
		if !u.Price.IsPositive() {
			return nil, fmt.Errorf("price must be positive")
		}
		out["price"] = u.Price.Round(2)
	}
	if u.CostPrice != nil {
		if u.CostPrice.IsNegative() {
			return nil, fmt.Errorf("cost price cannot be negative")
		}
		out["cost_price"] = u.CostPrice.Round(2)
	}
	if u.StockQuantity != nil {
		if u.StockQuantity.IsNegative() {
			return nil, fmt.Errorf("stock cannot be negative")
		}
		out["stock_quantity"] = *u.StockQuantity
	}
	if u.Category != nil {
		out["category"] = *u.Category
	}
	if u.Unit != nil {
		out["unit"] = strings.ToUpper(*u.Unit)
	}
	if u.Active != nil {
		out["active"] = *u.Active
	}
	if u.ImageURL != nil {
		out["image_url"] = *u.ImageURL
	}
	return out, nil
}

// --- PUT: Update Price or Stock ---
func (h *ProductHandler) Update(c *gin.Context) {
	// 1. Get ID from URL (e.g., /products/5)
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	companyID := operator(c).CompanyID

	// 2. Find existing product
	product, err := h.products.Get(ctx, companyID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. Collect the fields that were sent (partial update)
	var req ProductUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	fields, err := req.fields()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusOK, gin.H{"message": "Nothing to update", "product": product})
		return
	}

	// 4. Save updates
	if err := h.products.Update(ctx, product, fields); err != nil {
		respondError(c, err)
		return
	}
	if product, err = h.products.Get(ctx, companyID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product updated successfully", "product": product})
}

// --- DELETE: Remove a product from the till ---
// Sold products stay referenced by past sales, so they are only deactivated.
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.products.Deactivate(c.Request.Context(), operator(c).CompanyID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deactivated successfully"})
}

type StockMovementRequest struct {
	Type        string          `json:"type" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Observation string          `json:"observation"`
}

// --- POST: /api/products/:id/stock-movements ---
// type is "entrada" (goods in) or "saida" (goods out).
func (h *ProductHandler) MoveStock(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req StockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	op := operator(c)
	m, err := h.products.MoveStock(c.Request.Context(), op.CompanyID, id, op.UserID, req.Type, req.Quantity, req.Observation)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// --- GET: /api/products/:id/stock-movements ---
func (h *ProductHandler) StockMovements(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	companyID := operator(c).CompanyID
	if _, err := h.products.Get(c.Request.Context(), companyID, id); err != nil {
		respondError(c, err)
		return
	}
	history, err := h.products.StockMovements(c.Request.Context(), companyID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if history == nil {
		history = []models.StockMovement{}
	}
	c.JSON(http.StatusOK, history)
}

// --- UPLOAD: Handle Image Files ---
func (h *ProductHandler) UploadImage(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file uploaded")
		return
	}

	// 2. Only allow images
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		badRequest(c, "Only jpg, png and webp images are allowed")
		return
	}

	// 3. Generate a safe unique filename
	filename := uuid.NewString() + ext

	// 4. Save the file to the uploads folder
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, filename)); err != nil {
		respondError(c, fmt.Errorf("save upload: %w", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     strings.TrimRight(h.baseURL, "/") + "/uploads/" + filename,
	})
}
