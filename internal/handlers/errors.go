package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go-pdv/internal/checkout"
	"go-pdv/internal/database"
	"go-pdv/internal/fiscal"
	"go-pdv/internal/middleware"
	"go-pdv/internal/sale"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError turns a service error into the JSON the till shows:
// {"error": message, "level": info|warning|error}.
func respondError(c *gin.Context, err error) {
	switch {
	case sale.IsValidation(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "level": sale.LevelOf(err)})
	case errors.Is(err, fiscal.ErrInvalidLength), errors.Is(err, fiscal.ErrInvalidPart),
		errors.Is(err, database.ErrInvalidMovement), errors.Is(err, database.ErrInvalidStockMove):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "level": sale.LevelError})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "level": sale.LevelError})
	case errors.Is(err, checkout.ErrStaleResult):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "level": sale.LevelInfo})
	case errors.Is(err, database.ErrSaleNumberConflict), errors.Is(err, database.ErrCashierAlreadyOpen),
		errors.Is(err, database.ErrCashierNotOpen), errors.Is(err, database.ErrDuplicate),
		errors.Is(err, database.ErrInsufficientStock):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "level": sale.LevelWarning})
	default:
		log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "level": sale.LevelError})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// operator reads who is calling from the claims AuthMiddleware stored.
func operator(c *gin.Context) checkout.Operator {
	return checkout.Operator{
		UserID:    c.GetUint(middleware.KeyUserID),
		CompanyID: c.GetUint(middleware.KeyCompanyID),
	}
}

func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		badRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(v), true
}
