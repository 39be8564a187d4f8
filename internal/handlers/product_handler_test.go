package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-pdv/internal/models"
	"go-pdv/internal/sale"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductLifecycle(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(s.admin)

	// 1. Create
	w := s.do(http.MethodPost, "/api/products", admin, gin.H{
		"code": "7894900011517", "name": "Feijão Carioca 1kg", "price": "7.49", "cost_price": "4.10",
		"category": "Mercearia", "stock_quantity": "40",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decode[models.Product](t, w)
	assert.True(t, p.Active)
	assert.Equal(t, "UN", p.Unit)
	assert.Equal(t, s.company.ID, p.CompanyID)

	// 2. Same code again
	w = s.do(http.MethodPost, "/api/products", admin, gin.H{"code": "7894900011517", "name": "Outro", "price": "1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// 3. Partial update
	w = s.do(http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID), admin, gin.H{"price": "7.99"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[struct {
		Product models.Product `json:"product"`
	}](t, w).Product
	assertDecimal(t, "7.99", updated.Price)
	assertDecimal(t, "40", updated.StockQuantity)
	assert.Equal(t, "Feijão Carioca 1kg", updated.Name)

	w = s.do(http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID), admin, gin.H{"price": "-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 4. Scan finds it by code
	w = s.do(http.MethodGet, "/api/products/scan/7894900011517", s.token(s.cashier), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, p.ID, decode[models.Product](t, w).ID)

	// 5. Delete only deactivates, so search stops offering it
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/products/%d", p.ID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/products/search?q=feij", s.token(s.cashier), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]sale.Product](t, w))

	w = s.do(http.MethodGet, "/api/products", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Product](t, w), 3)
}

func TestProductErrors(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(s.admin)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/products/scan/000", admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/products/999", admin, gin.H{"price": "1"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/products/999", admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodDelete, "/api/products/abc", admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/products", admin, gin.H{"code": "1", "name": "Grátis", "price": "0"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, "/api/products", s.token(s.cashier), gin.H{"code": "1", "name": "x", "price": "1"}).Code)
}

func TestProductSearch(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/products/search?q=ARROZ", s.token(s.cashier), nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]sale.Product](t, w)
	require.Len(t, found, 1)
	assert.Equal(t, s.rice.ID, found[0].ID)
	assertDecimal(t, "100", found[0].UnitPrice)
}

func upload(s *testServer, filename string) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", filename)
	part.Write([]byte("\x89PNG fake image"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.token(s.admin))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t)

	w := upload(s, "coca.PNG")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	url := decode[map[string]string](t, w)["url"]
	assert.True(t, strings.HasPrefix(url, "http://pdv.local/uploads/"), url)
	assert.True(t, strings.HasSuffix(url, ".png"), url)

	assert.Equal(t, http.StatusBadRequest, upload(s, "script.sh").Code)
}

func TestCustomers(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/customers", s.token(s.admin), gin.H{"name": "Maria Souza", "document": "12345678909"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/customers", s.token(s.admin), gin.H{"name": "Sem doc", "document": "12a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/customers?q=maria", s.token(s.cashier), nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]models.Customer](t, w)
	require.Len(t, found, 1)
	assert.Equal(t, "Maria Souza", found[0].Name)

	w = s.do(http.MethodGet, "/api/customers?q=joao", s.token(s.cashier), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestStockMovements(t *testing.T) {
	s := newTestServer(t)
	admin := s.token(s.admin)
	path := fmt.Sprintf("/api/products/%d/stock-movements", s.coke.ID)

	w := s.do(http.MethodPost, path, admin, gin.H{"type": models.StockIn, "quantity": "6", "observation": "nota 4521"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decode[models.StockMovement](t, w)
	assertDecimal(t, "9", m.StockAfter)
	assert.Equal(t, s.admin.ID, m.UserID)

	// the till sees the new stock right away
	w = s.do(http.MethodGet, "/api/products/scan/"+s.coke.Code, s.token(s.cashier), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assertDecimal(t, "9", decode[models.Product](t, w).StockQuantity)

	w = s.do(http.MethodPost, path, admin, gin.H{"type": models.StockOut, "quantity": "10"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "warning", decode[errorBody](t, w).Level)

	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPost, path, admin, gin.H{"type": "ajuste", "quantity": "1"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, s.do(http.MethodPost, path, admin, gin.H{"type": models.StockOut, "quantity": "-1"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, path, admin, gin.H{"quantity": "1"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPost, "/api/products/999/stock-movements", admin, gin.H{"type": models.StockIn, "quantity": "1"}).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodPost, path, s.token(s.cashier), gin.H{"type": models.StockIn, "quantity": "1"}).Code)

	w = s.do(http.MethodPost, path, admin, gin.H{"type": models.StockOut, "quantity": "1", "observation": "avaria"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, path, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[[]models.StockMovement](t, w)
	require.Len(t, history, 2)
	assert.Equal(t, "avaria", history[0].Observation)
	assertDecimal(t, "8", history[0].StockAfter)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/products/999/stock-movements", admin, nil).Code)
}
