package handlers

import (
	"net/http"
	"strings"

	"go-pdv/internal/checkout"
	"go-pdv/internal/database"
	"go-pdv/internal/models"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	customers *database.CustomerRepository
	till      *checkout.Service
}

func NewCustomerHandler(customers *database.CustomerRepository, till *checkout.Service) *CustomerHandler {
	return &CustomerHandler{customers: customers, till: till}
}

// --- GET: /api/customers?q= ---
func (h *CustomerHandler) Search(c *gin.Context) {
	found, err := h.till.SearchCustomers(c.Request.Context(), operator(c), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	if found == nil {
		found = []models.Customer{}
	}
	c.JSON(http.StatusOK, found)
}

type CustomerRequest struct {
	Name     string `json:"name" binding:"required"`
	Document string `json:"document" binding:"omitempty,numeric,min=11,max=14"`
	Phone    string `json:"phone"`
	Email    string `json:"email" binding:"omitempty,email"`
}

// --- POST: /api/customers ---
func (h *CustomerHandler) Create(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	customer := models.Customer{
		CompanyID: operator(c).CompanyID,
		Name:      strings.TrimSpace(req.Name),
		Document:  req.Document,
		Phone:     req.Phone,
		Email:     req.Email,
	}
	if err := h.customers.Create(c.Request.Context(), &customer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}
