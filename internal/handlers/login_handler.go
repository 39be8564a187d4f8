package handlers

import (
	"net/http"
	"strings"

	"go-pdv/internal/auth"
	"go-pdv/internal/database"
	"go-pdv/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin   = "admin"
	RoleCashier = "cashier"
)

type AuthHandler struct {
	users     *database.UserRepository
	companies *database.CompanyRepository
	tokens    *auth.Manager
}

func NewAuthHandler(users *database.UserRepository, companies *database.CompanyRepository, tokens *auth.Manager) *AuthHandler {
	return &AuthHandler{users: users, companies: companies, tokens: tokens}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input LoginRequest
	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	// 2. Find User in DB
	user, err := h.users.FindByUsername(c.Request.Context(), input.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// 3. Verify Password (Bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	// 4. Generate JWT Token
	token, err := h.tokens.GenerateToken(user.ID, user.CompanyID, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("token generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"role":       user.Role,
		"username":   user.Username,
		"company_id": user.CompanyID,
	})
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required,min=6"`
	CompanyName string `json:"company_name" binding:"required"`
	CNPJ        string `json:"cnpj" binding:"required,len=14,numeric"`
	UFCode      int    `json:"uf_code" binding:"required,min=11,max=53"`
}

// Register opens a new store: the company, its fiscal settings and its first
// admin are created together. Only mounted when ALLOW_REGISTRATION is on.
func (h *AuthHandler) Register(c *gin.Context) {
	var input RegisterRequest
	// 1. Parse JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	// 2. Hash the Password
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// 3. Save company and owner in one go
	company := models.Company{Name: strings.TrimSpace(input.CompanyName), CNPJ: input.CNPJ, UFCode: input.UFCode}
	owner := models.User{Username: input.Username, PasswordHash: string(hash), Role: RoleAdmin}
	if err := h.companies.Register(c.Request.Context(), &company, &owner); err != nil {
		respondError(c, err)
		return
	}

	log.Info().Uint("company_id", company.ID).Str("username", owner.Username).Msg("company registered")
	c.JSON(http.StatusCreated, gin.H{"message": "Company created successfully", "company_id": company.ID})
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=admin cashier"`
}

// CreateUser lets an admin add operators to their own company.
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var input CreateUserRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid input")
		return
	}
	if input.Role == "" {
		input.Role = RoleCashier
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	user := models.User{
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         input.Role,
		CompanyID:    operator(c).CompanyID,
	}
	if err := h.users.Create(c.Request.Context(), &user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
