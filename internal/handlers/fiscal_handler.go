package handlers

import (
	"net/http"
	"strconv"
	"time"

	"go-pdv/internal/database"
	"go-pdv/internal/fiscal"
	"go-pdv/internal/models"

	"github.com/gin-gonic/gin"
)

type FiscalHandler struct {
	configs   *database.FiscalConfigRepository
	companies *database.CompanyRepository
	now       func() time.Time
}

func NewFiscalHandler(configs *database.FiscalConfigRepository, companies *database.CompanyRepository) *FiscalHandler {
	return &FiscalHandler{configs: configs, companies: companies, now: time.Now}
}

func modelParam(c *gin.Context) (fiscal.Model, bool) {
	n, err := strconv.Atoi(c.Param("model"))
	m := fiscal.Model(n)
	if err != nil || !m.Valid() {
		badRequest(c, "model must be 55 (NF-e) or 65 (NFC-e)")
		return 0, false
	}
	return m, true
}

// FiscalConfigView is what the settings screen reads. Secrets only report
// whether they are set.
type FiscalConfigView struct {
	*models.FiscalConfig
	ModelName       string `json:"model_name"`
	EnvironmentName string `json:"environment_name"`
	HasCSCToken     bool   `json:"has_csc_token"`
	HasCertPassword bool   `json:"has_certificate_password"`
}

func viewOf(cfg *models.FiscalConfig) FiscalConfigView {
	return FiscalConfigView{
		FiscalConfig:    cfg,
		ModelName:       fiscal.Model(cfg.Model).String(),
		EnvironmentName: fiscal.EnvironmentName(cfg.Environment),
		HasCSCToken:     cfg.CSCToken != "",
		HasCertPassword: cfg.CertificatePassword != "",
	}
}

// --- GET: /api/fiscal/config/:model ---
func (h *FiscalHandler) GetConfig(c *gin.Context) {
	m, ok := modelParam(c)
	if !ok {
		return
	}
	cfg, err := h.configs.Get(c.Request.Context(), operator(c).CompanyID, m)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(cfg))
}

// FiscalConfigRequest leaves untouched every field that is not sent; empty
// secrets keep the stored ones.
type FiscalConfigRequest struct {
	Environment         *string    `json:"environment"` // "producao"/"homologacao" or "1"/"2"
	Version             *string    `json:"version"`
	Series              *int       `json:"series" binding:"omitempty,min=0,max=999"`
	CurrentNumber       *int       `json:"current_number" binding:"omitempty,min=1,max=999999999"`
	CSCID               *string    `json:"csc_id"`
	CSCToken            string     `json:"csc_token"`
	CertificateFile     *string    `json:"certificate_file"`
	CertificatePassword string     `json:"certificate_password"`
	CertificateExpiry   *time.Time `json:"certificate_expiry"`
	LogoURL             *string    `json:"logo_url"`
}

func (r FiscalConfigRequest) applyTo(cfg *models.FiscalConfig) {
	if r.Environment != nil {
		cfg.Environment = fiscal.EnvironmentCode(*r.Environment)
	}
	if r.Version != nil {
		cfg.Version = *r.Version
	}
	if r.Series != nil {
		cfg.Series = *r.Series
	}
	if r.CurrentNumber != nil {
		cfg.CurrentNumber = *r.CurrentNumber
	}
	if r.CSCID != nil {
		cfg.CSCID = *r.CSCID
	}
	if r.CSCToken != "" {
		cfg.CSCToken = r.CSCToken
	}
	if r.CertificateFile != nil {
		cfg.CertificateFile = *r.CertificateFile
	}
	if r.CertificatePassword != "" {
		cfg.CertificatePassword = r.CertificatePassword
	}
	if r.CertificateExpiry != nil {
		cfg.CertificateExpiry = r.CertificateExpiry
	}
	if r.LogoURL != nil {
		cfg.LogoURL = *r.LogoURL
	}
}

// --- PUT: /api/fiscal/config/:model ---
func (h *FiscalHandler) SaveConfig(c *gin.Context) {
	m, ok := modelParam(c)
	if !ok {
		return
	}
	var req FiscalConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid input")
		return
	}

	ctx := c.Request.Context()
	cfg, err := h.configs.Get(ctx, operator(c).CompanyID, m)
	if err != nil {
		respondError(c, err)
		return
	}
	req.applyTo(cfg)
	if err := h.configs.Save(ctx, cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(cfg))
}

type AccessKeyRequest struct {
	Model        fiscal.Model `json:"model" binding:"required"`
	EmissionType int          `json:"emission_type"`
}

// --- POST: /api/fiscal/access-key ---
// Reserves the next document number of the model and builds its key.
func (h *FiscalHandler) GenerateAccessKey(c *gin.Context) {
	var req AccessKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Model.Valid() {
		badRequest(c, "model must be 55 (NF-e) or 65 (NFC-e)")
		return
	}
	if req.EmissionType == 0 {
		req.EmissionType = fiscal.EmissionNormal
	}

	// 1. Who is emitting
	ctx, companyID := c.Request.Context(), operator(c).CompanyID
	company, err := h.companies.Get(ctx, companyID)
	if err != nil {
		respondError(c, err)
		return
	}

	// 2. Take the next number
	cfg, number, err := h.configs.ReserveNumber(ctx, companyID, req.Model)
	if err != nil {
		respondError(c, err)
		return
	}

	// 3. Build the 44 digits
	key := fiscal.AccessKey{
		UF:           company.UFCode,
		IssuedAt:     h.now(),
		CNPJ:         company.CNPJ,
		Model:        req.Model,
		Series:       cfg.Series,
		Number:       number,
		EmissionType: req.EmissionType,
		Code:         fiscal.RandomCode(number),
	}
	str, err := key.String()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"access_key": str,
		"model":      int(req.Model),
		"series":     cfg.Series,
		"number":     number,
		"code":       key.Code,
	})
}

// --- GET: /api/fiscal/access-key/:key/validate ---
func (h *FiscalHandler) ValidateAccessKey(c *gin.Context) {
	key := c.Param("key")
	valid, err := fiscal.Validate(key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_key": key, "valid": valid})
}
