package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-pdv/internal/database"
	"go-pdv/internal/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// A question may chain lookups (find the product, then change it).
const maxToolRounds = 4

type Inventory interface {
	List(ctx context.Context, companyID uint) ([]models.Product, error)
	Get(ctx context.Context, companyID, id uint) (*models.Product, error)
	Update(ctx context.Context, p *models.Product, fields map[string]interface{}) error
	Create(ctx context.Context, p *models.Product) error
}

type Reports interface {
	SalesReport(ctx context.Context, companyID uint, p database.Period) (*database.SalesReportResult, error)
	TopSelling(ctx context.Context, companyID uint, p database.Period, limit int) ([]database.TopSeller, error)
	PaymentBreakdown(ctx context.Context, companyID uint, p database.Period) ([]database.MethodTotal, error)
}

var (
	_ Inventory = (*database.ProductRepository)(nil)
	_ Reports   = (*database.ReportRepository)(nil)
)

// Agent answers back-office questions with Gemini, letting the model call
// inventory and sales tools scoped to the asking admin's company.
type Agent struct {
	apiKey    string
	model     string
	inventory Inventory
	reports   Reports
	now       func() time.Time
}

func NewAgent(apiKey, model string, inventory Inventory, reports Reports) *Agent {
	return &Agent{apiKey: apiKey, model: model, inventory: inventory, reports: reports, now: time.Now}
}

func (a *Agent) Enabled() bool { return a.apiKey != "" }

func (a *Agent) systemPrompt() string {
	today := a.now().Format("2006-01-02")
	return fmt.Sprintf(`Today is %s. You are the assistant of a Brazilian point-of-sale back office. Prices are in BRL.

RULES:
1. UPDATE: If the user asks to update a product by NAME, do NOT ask for the ID. Call 'check_inventory' to find the ID, then call 'update_product_price' with it.
2. READ: For PRICE, COST, STOCK or DETAILS of a product, call 'check_inventory' and read the result. Never say you cannot get the price.
3. CREATE: Ask for the barcode if the user did not give one; never invent it.
4. SALES: For revenue and order counts use 'get_sales_report'; for best sellers use 'get_top_sellers'; for cash/card/pix totals use 'get_payment_breakdown'.
5. Answer in the user's language.`, today)
}

var dateRange = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
		"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
	},
	Required: []string{"start_date", "end_date"},
}

var tools = []*genai.Tool{{
	FunctionDeclarations: []*genai.FunctionDeclaration{
		{
			Name:        "check_inventory",
			Description: "Get the full inventory list. Use this to find ANY product details like ID, Code, Name, Price, Cost or Stock.",
		},
		{
			Name:        "update_product_price",
			Description: "Update the selling price of a specific product using its ID",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"product_id": {Type: genai.TypeInteger, Description: "ID of the product"},
					"new_price":  {Type: genai.TypeNumber, Description: "New price"},
				},
				Required: []string{"product_id", "new_price"},
			},
		},
		{
			Name:        "create_product",
			Description: "Add a new product to the inventory",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"code":           {Type: genai.TypeString, Description: "Barcode (EAN) or internal code"},
					"name":           {Type: genai.TypeString, Description: "Name of the product"},
					"price":          {Type: genai.TypeNumber, Description: "Selling price"},
					"category":       {Type: genai.TypeString, Description: "Category (Bebidas, Mercearia, etc)"},
					"stock_quantity": {Type: genai.TypeNumber, Description: "Initial stock"},
				},
				Required: []string{"code", "name", "price"},
			},
		},
		{Name: "get_sales_report", Description: "Get total sales revenue and number of sales for a date range.", Parameters: dateRange},
		{Name: "get_top_sellers", Description: "Get the five best selling products for a date range.", Parameters: dateRange},
		{Name: "get_payment_breakdown", Description: "Get totals per payment method (cash, debit, credit, pix, voucher) for a date range.", Parameters: dateRange},
	},
}}

// Ask runs one question through the model, executing tool calls until the
// model answers in text.
func (a *Agent) Ask(ctx context.Context, companyID uint, message string) (string, error) {
	if !a.Enabled() {
		return "", errors.New("assistant is not configured")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel(a.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(a.systemPrompt())}}
	model.Tools = tools

	session := model.StartChat()
	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}

	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}
		replies := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			log.Info().Str("tool", call.Name).Uint("company_id", companyID).Msg("assistant tool call")
			replies = append(replies, genai.FunctionResponse{
				Name:     call.Name,
				Response: a.runTool(ctx, companyID, call),
			})
		}
		if resp, err = session.SendMessage(ctx, replies...); err != nil {
			return "", err
		}
	}
	return textOf(resp), nil
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func textOf(resp *genai.GenerateContentResponse) string {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt)
			}
		}
	}
	return "I completed the action."
}
