package handlers

import (
	"time"

	"go-pdv/internal/ai"
	"go-pdv/internal/auth"
	"go-pdv/internal/checkout"
	"go-pdv/internal/database"
	"go-pdv/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer is built from.
type Deps struct {
	DB                *gorm.DB
	Till              *checkout.Service
	Tokens            *auth.Manager
	Agent             *ai.Agent
	AllowRegistration bool
	AllowedOrigins    []string
	BaseURL           string
	UploadDir         string
	StoreName         string
	Terminal          string
	CacheKind         string
}

// NewRouter mounts the API. Static assets and the SPA fallback are left to
// the caller.
func NewRouter(d Deps) *gin.Engine {
	products := database.NewProductRepository(d.DB)
	customers := database.NewCustomerRepository(d.DB)
	companies := database.NewCompanyRepository(d.DB)
	users := database.NewUserRepository(d.DB)
	sales := database.NewSaleRepository(d.DB)
	cashiers := database.NewCashierRepository(d.DB)
	fiscalConfigs := database.NewFiscalConfigRepository(d.DB)
	reports := database.NewReportRepository(d.DB)

	authH := NewAuthHandler(users, companies, d.Tokens)
	productH := NewProductHandler(products, d.Till, d.UploadDir, d.BaseURL)
	customerH := NewCustomerHandler(customers, d.Till)
	pdvH := NewPDVHandler(d.Till)
	saleH := NewSaleHandler(sales, d.StoreName)
	cashierH := NewCashierHandler(cashiers)
	fiscalH := NewFiscalHandler(fiscalConfigs, companies)
	reportH := NewReportHandler(reports, d.Agent)
	systemH := NewSystemHandler(d.Terminal, d.StoreName, d.CacheKind)

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", systemH.Health)
	r.POST("/login", authH.Login)
	if d.AllowRegistration {
		r.POST("/register", authH.Register)
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(d.Tokens))
	{
		api.GET("/system/status", systemH.Status)

		api.GET("/products", productH.List)
		api.GET("/products/search", productH.Search)
		api.GET("/products/scan/:code", productH.Scan)
		api.GET("/customers", customerH.Search)

		pdv := api.Group("/pdv")
		{
			pdv.GET("/session", pdvH.Session)
			pdv.POST("/items", pdvH.AddItem)
			pdv.PATCH("/items/:id", pdvH.ChangeQuantity)
			pdv.DELETE("/items/:id", pdvH.RemoveItem)
			pdv.PUT("/items/:id/discount", pdvH.ApplyItemDiscount)
			pdv.DELETE("/items/:id/discount", pdvH.RemoveItemDiscount)
			pdv.PUT("/discount", pdvH.ApplySaleDiscount)
			pdv.DELETE("/discount", pdvH.RemoveSaleDiscount)
			pdv.POST("/payments/full", pdvH.PayFull)
			pdv.POST("/payments/partial", pdvH.PayPartial)
			pdv.DELETE("/payments/:id", pdvH.RemovePayment)
			pdv.PUT("/customer", pdvH.SelectCustomer)
			pdv.DELETE("/customer", pdvH.ClearCustomer)
			pdv.POST("/finalize", pdvH.Finalize)
			pdv.POST("/cancel", pdvH.Cancel)
		}

		api.GET("/sales/:number", saleH.Get)
		api.GET("/sales/:number/receipt", saleH.Receipt)

		api.POST("/cashiers/open", cashierH.Open)
		api.GET("/cashiers/current", cashierH.Current)
		api.POST("/cashiers/:id/close", cashierH.Close)
		api.POST("/cashiers/:id/movements", cashierH.AddMovement)
		api.GET("/cashiers/:id/summary", cashierH.Summary)

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole(RoleAdmin))
		{
			admin.POST("/users", authH.CreateUser)

			admin.POST("/upload", productH.UploadImage)
			admin.POST("/products", productH.Create)
			admin.PUT("/products/:id", productH.Update)
			admin.DELETE("/products/:id", productH.Delete)
			admin.POST("/products/:id/stock-movements", productH.MoveStock)
			admin.GET("/products/:id/stock-movements", productH.StockMovements)
			admin.POST("/customers", customerH.Create)

			admin.GET("/fiscal/config/:model", fiscalH.GetConfig)
			admin.PUT("/fiscal/config/:model", fiscalH.SaveConfig)
			admin.POST("/fiscal/access-key", fiscalH.GenerateAccessKey)
			admin.GET("/fiscal/access-key/:key/validate", fiscalH.ValidateAccessKey)

			admin.GET("/reports", reportH.Sales)
			admin.GET("/reports/export", reportH.Export)
			admin.GET("/reports/valuation", reportH.Valuation)
			admin.POST("/ask", reportH.Ask)
		}
	}

	return r
}
