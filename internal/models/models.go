package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company - the store (tenant) a user operates in
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120" json:"name"`
	CNPJ      string    `gorm:"uniqueIndex;size:14" json:"cnpj"`
	UFCode    int       `json:"uf_code"` // IBGE state code, first two digits of the access key
	CreatedAt time.Time `json:"created_at"`
}

// User - the operator at the till (or the admin in the back office)
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:50" json:"username"`
	PasswordHash string    `json:"-"`    // Never return this in JSON
	Role         string    `json:"role"` // 'admin', 'cashier'
	CompanyID    uint      `gorm:"index" json:"company_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Product - the inventory
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CompanyID     uint            `gorm:"uniqueIndex:idx_product_company_code" json:"company_id"`
	Code          string          `gorm:"uniqueIndex:idx_product_company_code;size:60" json:"code"`
	Name          string          `gorm:"size:160" json:"name"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2)" json:"price"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2)" json:"cost_price"`
	Category      string          `gorm:"size:60" json:"category"`
	StockQuantity decimal.Decimal `gorm:"type:decimal(12,3)" json:"stock_quantity"`
	Unit          string          `gorm:"size:6" json:"unit"` // UN, KG, L ...
	Active        bool            `json:"active"`
	ImageURL      string          `json:"image_url"`
}

// Stock movement types
const (
	StockIn  = "entrada" // goods received
	StockOut = "saida"   // losses, breakage, internal use
)

// StockMovement - manual stock entry or exit, kept as product history.
// Quantity is always positive; Type says which way it went.
type StockMovement struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ProductID   uint            `gorm:"index" json:"product_id"`
	CompanyID   uint            `gorm:"index" json:"company_id"`
	UserID      uint            `json:"user_id"`
	Type        string          `gorm:"size:8" json:"type"`
	Quantity    decimal.Decimal `gorm:"type:decimal(12,3)" json:"quantity"`
	StockAfter  decimal.Decimal `gorm:"type:decimal(12,3)" json:"stock_after"`
	Observation string          `json:"observation"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Customer - optional buyer attached to a sale
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CompanyID uint      `gorm:"index" json:"company_id"`
	Name      string    `gorm:"size:160" json:"name"`
	Document  string    `gorm:"size:14;index" json:"document"` // CPF or CNPJ digits
	Phone     string    `gorm:"size:20" json:"phone"`
	Email     string    `gorm:"size:120" json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Sale statuses
const (
	SaleCompleted = "completed"
	SaleCancelled = "cancelled"
)

// Sale - the transaction header. Number is sequential per company.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CompanyID     uint            `gorm:"uniqueIndex:idx_sale_company_number" json:"company_id"`
	Number        int             `gorm:"uniqueIndex:idx_sale_company_number" json:"number"`
	UserID        uint            `gorm:"index" json:"user_id"` // Who processed it
	CashierID     *uint           `gorm:"index" json:"cashier_id,omitempty"`
	CustomerID    *uint           `json:"customer_id,omitempty"`
	CustomerName  string          `gorm:"size:160" json:"customer_name,omitempty"`
	Terminal      string          `gorm:"size:20" json:"terminal"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	ItemsDiscount decimal.Decimal `gorm:"type:decimal(12,2)" json:"items_discount"`
	SaleDiscount  decimal.Decimal `gorm:"type:decimal(12,2)" json:"sale_discount"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_amount"`
	TotalPaid     decimal.Decimal `gorm:"type:decimal(12,2)" json:"total_paid"`
	ChangeDue     decimal.Decimal `gorm:"type:decimal(12,2)" json:"change_due"`
	Status        string          `gorm:"size:20" json:"status"`
	SaleTime      time.Time       `gorm:"index" json:"sale_time"`
	Items         []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	Payments      []SalePayment   `gorm:"foreignKey:SaleID" json:"payments"`
}

// SaleItem - one cart row, snapshotted at sale time
type SaleItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	SaleID         uint            `gorm:"index" json:"sale_id"`
	ProductID      uint            `gorm:"index" json:"product_id"`
	Code           string          `gorm:"size:60" json:"code"`
	Name           string          `gorm:"size:160" json:"name"`
	Unit           string          `gorm:"size:6" json:"unit"`
	Quantity       decimal.Decimal `gorm:"type:decimal(12,3)" json:"quantity"`
	PriceAtSale    decimal.Decimal `gorm:"type:decimal(12,2)" json:"price_at_sale"` // Snapshot of price at time of sale
	DiscountKind   string          `gorm:"size:12" json:"discount_kind,omitempty"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_amount"`
	DiscountValue  decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_value"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(12,2)" json:"line_total"`
}

// SalePayment - one tender applied to a sale
type SalePayment struct {
	ID      uint            `gorm:"primaryKey" json:"id"`
	SaleID  uint            `gorm:"index" json:"sale_id"`
	Method  string          `gorm:"size:12;index" json:"method"`
	Label   string          `gorm:"size:40" json:"label"`
	Partial bool            `json:"partial"`
	Amount  decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
}

// Cashier statuses
const (
	CashierOpen   = "open"
	CashierClosed = "closed"
)

// Cashier - a cash drawer session (abertura / fechamento de caixa)
type Cashier struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	CompanyID     uint                `gorm:"index" json:"company_id"`
	UserID        uint                `gorm:"index" json:"user_id"`
	InitialAmount decimal.Decimal     `gorm:"type:decimal(12,2)" json:"initial_amount"`
	FinalAmount   decimal.NullDecimal `gorm:"type:decimal(12,2)" json:"final_amount"`
	Status        string              `gorm:"size:10;index" json:"status"`
	OpenedAt      time.Time           `json:"opened_at"`
	ClosedAt      *time.Time          `json:"closed_at,omitempty"`
}

// Cashier movement types
const (
	MovementSupply   = "suprimento" // cash added to the drawer
	MovementWithdraw = "sangria"    // cash taken out
)

// CashierMovement - supply or withdrawal on an open drawer. Withdrawals are stored negative.
type CashierMovement struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CashierID   uint            `gorm:"index" json:"cashier_id"`
	UserID      uint            `json:"user_id"`
	CompanyID   uint            `json:"company_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	Type        string          `gorm:"size:12" json:"type"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}

// FiscalConfig - NF-e (55) or NFC-e (65) settings of a company
type FiscalConfig struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	CompanyID           uint       `gorm:"uniqueIndex:idx_fiscal_company_model" json:"company_id"`
	Model               int        `gorm:"uniqueIndex:idx_fiscal_company_model" json:"model"`
	Environment         string     `gorm:"size:1" json:"environment"` // 1 production, 2 homologation
	Version             string     `gorm:"size:8" json:"version"`
	Series              int        `json:"series"`
	CurrentNumber       int        `json:"current_number"`
	CSCID               string     `gorm:"size:10" json:"csc_id,omitempty"`
	CSCToken            string     `gorm:"size:64" json:"-"`
	CertificateFile     string     `json:"certificate_file,omitempty"`
	CertificatePassword string     `json:"-"`
	CertificateExpiry   *time.Time `json:"certificate_expiry,omitempty"`
	LogoURL             string     `json:"logo_url,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
