package sale

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountKind selects how a Discount amount is interpreted.
type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

func (k DiscountKind) Valid() bool {
	return k == DiscountPercentage || k == DiscountFixed
}

// Discount is either a percentage of its base or a fixed currency amount.
type Discount struct {
	Kind   DiscountKind    `json:"kind"`
	Amount decimal.Decimal `json:"amount"`
}

// valueOn returns the currency value this discount removes from base.
func (d Discount) valueOn(base decimal.Decimal) decimal.Decimal {
	if d.Kind == DiscountPercentage {
		return base.Mul(d.Amount).Div(hundred).Round(2)
	}
	return d.Amount.Round(2)
}

// Product is what a product lookup hands to the engine.
type Product struct {
	ID             uint            `json:"id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	StockAvailable decimal.Decimal `json:"stock_available"`
	Unit           string          `json:"unit"`
	Active         bool            `json:"active"`
}

// Sellable is the filter applied before a product may enter the cart.
func (p Product) Sellable() bool {
	return p.Active && p.StockAvailable.IsPositive()
}

// Customer is the part of a customer record a session keeps.
type Customer struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LineItem is one cart row.
type LineItem struct {
	ID             string          `json:"id"`
	ProductID      uint            `json:"product_id"`
	ProductCode    string          `json:"product_code"`
	Name           string          `json:"name"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       decimal.Decimal `json:"quantity"`
	StockAvailable decimal.Decimal `json:"stock_available"`
	Unit           string          `json:"unit"`
	Discount       *Discount       `json:"discount,omitempty"`
}

// Gross is unit price times quantity, rounded to cents.
func (li LineItem) Gross() decimal.Decimal {
	return li.UnitPrice.Mul(li.Quantity).Round(2)
}

func (li LineItem) DiscountValue() decimal.Decimal {
	if li.Discount == nil {
		return decimal.Zero
	}
	return li.Discount.valueOn(li.Gross())
}

// Final is the line total after its own discount.
func (li LineItem) Final() decimal.Decimal {
	return li.Gross().Sub(li.DiscountValue())
}

// Method is the tender type of a payment.
type Method string

const (
	MethodCash    Method = "cash"
	MethodDebit   Method = "debit"
	MethodCredit  Method = "credit"
	MethodPix     Method = "pix"
	MethodVoucher Method = "voucher"
)

var methodLabels = map[Method]string{
	MethodCash:    "Dinheiro",
	MethodDebit:   "Débito",
	MethodCredit:  "Crédito",
	MethodPix:     "PIX",
	MethodVoucher: "Voucher",
}

func (m Method) Valid() bool {
	_, ok := methodLabels[m]
	return ok
}

func (m Method) IsCash() bool { return m == MethodCash }

// Label is the display name shown on the till and on receipts.
func (m Method) Label() string {
	if l, ok := methodLabels[m]; ok {
		return l
	}
	return string(m)
}

// Payment is one tender applied to the sale.
type Payment struct {
	ID      string          `json:"id"`
	Label   string          `json:"label"`
	Method  Method          `json:"method"`
	Partial bool            `json:"partial"`
	Amount  decimal.Decimal `json:"amount"`
}

// Session is the aggregate a cashier drives through one checkout. Totals are
// always derived from it and never stored.
type Session struct {
	Items        []LineItem `json:"items"`
	SaleDiscount *Discount  `json:"sale_discount,omitempty"`
	Payments     []Payment  `json:"payments"`
	Customer     *Customer  `json:"customer,omitempty"`
}

func (s Session) IsEmpty() bool { return len(s.Items) == 0 }

// IsBlank reports a session carrying nothing worth caching.
func (s Session) IsBlank() bool {
	return s.IsEmpty() && s.SaleDiscount == nil && len(s.Payments) == 0 && s.Customer == nil
}

func (s Session) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range s.Items {
		sum = sum.Add(it.Gross())
	}
	return sum
}

func (s Session) ItemsDiscountTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range s.Items {
		sum = sum.Add(it.DiscountValue())
	}
	return sum
}

func (s Session) SaleDiscountValue() decimal.Decimal {
	if s.SaleDiscount == nil {
		return decimal.Zero
	}
	return s.SaleDiscount.valueOn(s.Subtotal())
}

func (s Session) Total() decimal.Decimal {
	return s.Subtotal().Sub(s.ItemsDiscountTotal()).Sub(s.SaleDiscountValue())
}

func (s Session) TotalPaid() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range s.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// CashPaid sums cash tenders only.
func (s Session) CashPaid() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range s.Payments {
		if p.Method.IsCash() {
			sum = sum.Add(p.Amount)
		}
	}
	return sum
}

func (s Session) NonCashPaid() decimal.Decimal {
	return s.TotalPaid().Sub(s.CashPaid())
}

func (s Session) RemainingBalance() decimal.Decimal {
	return s.Total().Sub(s.TotalPaid())
}

// ChangeDue is the overpayment handed back in cash. It can never exceed the
// cash actually tendered and is never negative.
func (s Session) ChangeDue() decimal.Decimal {
	over := s.TotalPaid().Sub(s.Total())
	if !over.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(over, s.CashPaid())
}

func (s Session) findItem(rowID string) int {
	for i, it := range s.Items {
		if it.ID == rowID {
			return i
		}
	}
	return -1
}

func (s Session) findPayment(id string) int {
	for i, p := range s.Payments {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// clone deep-copies the session so transitions never alias the caller's state.
func (s Session) clone() Session {
	out := Session{}
	if s.Items != nil {
		out.Items = make([]LineItem, len(s.Items))
		for i, it := range s.Items {
			if it.Discount != nil {
				d := *it.Discount
				it.Discount = &d
			}
			out.Items[i] = it
		}
	}
	if s.SaleDiscount != nil {
		d := *s.SaleDiscount
		out.SaleDiscount = &d
	}
	if s.Payments != nil {
		out.Payments = append([]Payment(nil), s.Payments...)
	}
	if s.Customer != nil {
		c := *s.Customer
		out.Customer = &c
	}
	return out
}
