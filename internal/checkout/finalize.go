package checkout

import (
	"context"
	"errors"
	"fmt"

	"go-pdv/internal/database"
	"go-pdv/internal/models"
	"go-pdv/internal/sale"

	"github.com/rs/zerolog/log"
)

// Finalize persists a settled session as the company's next sale and clears
// it from the cache. When another till takes the number first, the number
// is fetched again, up to the configured attempts.
func (s *Service) Finalize(ctx context.Context, op Operator) (*models.Sale, error) {
	unlock := s.locks.lock(op.key())
	defer unlock()

	// 1. Is it paid?
	cur, err := s.load(ctx, op)
	if err != nil {
		return nil, err
	}
	if err := s.engine.CheckFinalize(cur); err != nil {
		return nil, err
	}

	// 2. Which drawer takes the cash (none is fine)
	var cashierID *uint
	drawer, err := s.cashiers.Current(ctx, op.CompanyID, op.UserID)
	switch {
	case err == nil:
		cashierID = &drawer.ID
	case errors.Is(err, database.ErrCashierNotOpen):
	default:
		return nil, fmt.Errorf("find open cashier: %w", err)
	}

	// 3. Number and save
	var record *models.Sale
	for attempt := 1; ; attempt++ {
		number, err := s.sales.NextNumber(ctx, op.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("next sale number: %w", err)
		}
		record = s.buildSale(op, cur, number, cashierID)

		err = s.sales.Create(ctx, record)
		if err == nil {
			break
		}
		if errors.Is(err, database.ErrInsufficientStock) {
			return nil, fmt.Errorf("%w: %w", sale.ErrStockExceeded, err)
		}
		if !errors.Is(err, database.ErrSaleNumberConflict) || attempt >= s.opts.FinalizeRetries {
			return nil, err
		}
		log.Warn().Int("number", number).Int("attempt", attempt).Uint("company_id", op.CompanyID).
			Msg("sale number taken by another till, renumbering")
	}

	// 4. The sale is stored; a stale cache entry must not resurrect it
	s.searches.forget(op.key())
	if err := s.sessions.Clear(ctx, op.key()); err != nil {
		log.Error().Err(err).Int("number", record.Number).Msg("sale finalized but session not cleared")
	}
	log.Info().
		Int("number", record.Number).
		Uint("company_id", op.CompanyID).
		Uint("user_id", op.UserID).
		Str("total", record.TotalAmount.StringFixed(2)).
		Msg("sale finalized")
	return record, nil
}

func (s *Service) buildSale(op Operator, sess sale.Session, number int, cashierID *uint) *models.Sale {
	record := &models.Sale{
		CompanyID:     op.CompanyID,
		Number:        number,
		UserID:        op.UserID,
		CashierID:     cashierID,
		Terminal:      s.opts.Terminal,
		Subtotal:      sess.Subtotal(),
		ItemsDiscount: sess.ItemsDiscountTotal(),
		SaleDiscount:  sess.SaleDiscountValue(),
		TotalAmount:   sess.Total(),
		TotalPaid:     sess.TotalPaid(),
		ChangeDue:     sess.ChangeDue(),
		Status:        models.SaleCompleted,
		SaleTime:      s.now(),
	}
	if sess.Customer != nil {
		id := sess.Customer.ID
		record.CustomerID = &id
		record.CustomerName = sess.Customer.Name
	}

	for _, it := range sess.Items {
		item := models.SaleItem{
			ProductID:     it.ProductID,
			Code:          it.ProductCode,
			Name:          it.Name,
			Unit:          it.Unit,
			Quantity:      it.Quantity,
			PriceAtSale:   it.UnitPrice,
			DiscountValue: it.DiscountValue(),
			LineTotal:     it.Final(),
		}
		if it.Discount != nil {
			item.DiscountKind = string(it.Discount.Kind)
			item.DiscountAmount = it.Discount.Amount
		}
		record.Items = append(record.Items, item)
	}
	for _, p := range sess.Payments {
		record.Payments = append(record.Payments, models.SalePayment{
			Method:  string(p.Method),
			Label:   p.Label,
			Partial: p.Partial,
			Amount:  p.Amount,
		})
	}
	return record
}
