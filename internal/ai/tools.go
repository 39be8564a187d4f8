package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pdv/internal/database"
	"go-pdv/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/shopspring/decimal"
)

// runTool executes one model tool call and returns the payload sent back.
// Failures are reported to the model as {"error": ...} so it can explain them.
func (a *Agent) runTool(ctx context.Context, companyID uint, call genai.FunctionCall) map[string]any {
	switch call.Name {
	case "check_inventory":
		return a.checkInventory(ctx, companyID)
	case "update_product_price":
		return a.updatePrice(ctx, companyID, call.Args)
	case "create_product":
		return a.createProduct(ctx, companyID, call.Args)
	case "get_sales_report", "get_top_sellers", "get_payment_breakdown":
		period, err := periodFrom(call.Args)
		if err != nil {
			return toolError(err)
		}
		return a.salesTool(ctx, companyID, call.Name, period)
	}
	return toolError(fmt.Errorf("unknown tool %q", call.Name))
}

func toolError(err error) map[string]any { return map[string]any{"error": err.Error()} }

func (a *Agent) checkInventory(ctx context.Context, companyID uint) map[string]any {
	products, err := a.inventory.List(ctx, companyID)
	if err != nil {
		return toolError(err)
	}
	list := make([]map[string]any, 0, len(products))
	for _, p := range products {
		list = append(list, map[string]any{
			"id":     p.ID,
			"code":   p.Code,
			"name":   p.Name,
			"price":  p.Price.StringFixed(2),
			"cost":   p.CostPrice.StringFixed(2),
			"stock":  p.StockQuantity.String(),
			"unit":   p.Unit,
			"active": p.Active,
		})
	}
	return map[string]any{"inventory": list}
}

func (a *Agent) updatePrice(ctx context.Context, companyID uint, args map[string]any) map[string]any {
	id, ok := args["product_id"].(float64)
	if !ok {
		return toolError(fmt.Errorf("product_id is required"))
	}
	price, ok := args["new_price"].(float64)
	if !ok || price <= 0 {
		return toolError(fmt.Errorf("new_price must be a positive number"))
	}

	p, err := a.inventory.Get(ctx, companyID, uint(id))
	if err != nil {
		return map[string]any{"status": "Product ID not found"}
	}
	newPrice := decimal.NewFromFloat(price).Round(2)
	if err := a.inventory.Update(ctx, p, map[string]interface{}{"price": newPrice}); err != nil {
		return toolError(err)
	}
	return map[string]any{"status": "Success", "product": p.Name, "new_price": newPrice.StringFixed(2)}
}

func (a *Agent) createProduct(ctx context.Context, companyID uint, args map[string]any) map[string]any {
	code, _ := args["code"].(string)
	name, _ := args["name"].(string)
	price, _ := args["price"].(float64)
	if code == "" || name == "" || price <= 0 {
		return toolError(fmt.Errorf("code, name and a positive price are required"))
	}
	category, _ := args["category"].(string)
	stock, _ := args["stock_quantity"].(float64)

	p := models.Product{
		CompanyID:     companyID,
		Code:          code,
		Name:          name,
		Price:         decimal.NewFromFloat(price).Round(2),
		Category:      category,
		StockQuantity: decimal.NewFromFloat(stock).Round(3),
		Unit:          "UN",
		Active:        true,
	}
	if err := a.inventory.Create(ctx, &p); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return toolError(fmt.Errorf("a product with code %s already exists", code))
		}
		return toolError(err)
	}
	return map[string]any{"status": "Created", "id": p.ID, "name": p.Name}
}

func (a *Agent) salesTool(ctx context.Context, companyID uint, name string, p database.Period) map[string]any {
	switch name {
	case "get_sales_report":
		report, err := a.reports.SalesReport(ctx, companyID, p)
		if err != nil {
			return toolError(err)
		}
		return map[string]any{"revenue": report.TotalRevenue.StringFixed(2), "sales_count": report.TotalCount}
	case "get_top_sellers":
		top, err := a.reports.TopSelling(ctx, companyID, p, 5)
		if err != nil {
			return toolError(err)
		}
		rows := make([]map[string]any, 0, len(top))
		for _, t := range top {
			rows = append(rows, map[string]any{"product": t.ProductName, "sold": t.Sold.String(), "revenue": t.Revenue.StringFixed(2)})
		}
		return map[string]any{"top_sellers": rows}
	default:
		methods, err := a.reports.PaymentBreakdown(ctx, companyID, p)
		if err != nil {
			return toolError(err)
		}
		rows := make([]map[string]any, 0, len(methods))
		for _, m := range methods {
			rows = append(rows, map[string]any{"method": m.Method, "count": m.Count, "total": m.Total.StringFixed(2)})
		}
		return map[string]any{"payments": rows}
	}
}

// periodFrom reads start_date/end_date; the end day is inclusive.
func periodFrom(args map[string]any) (database.Period, error) {
	startStr, _ := args["start_date"].(string)
	endStr, _ := args["end_date"].(string)
	start, err1 := time.ParseInLocation("2006-01-02", startStr, time.Local)
	end, err2 := time.ParseInLocation("2006-01-02", endStr, time.Local)
	if err1 != nil || err2 != nil {
		return database.Period{}, fmt.Errorf("dates must be in YYYY-MM-DD format")
	}
	return database.Period{Start: start, End: end.Add(24*time.Hour - time.Second)}, nil
}
