// Package cache keeps the in-progress checkout session of each operator so a
// till that reloads (or a second tab) resumes the same sale.
package cache

import (
	"context"
	"fmt"

	"go-pdv/internal/sale"
)

// SessionCache stores one session snapshot per key. Last write wins.
type SessionCache interface {
	Save(ctx context.Context, key string, s sale.Session) error
	// Load returns nil without error when nothing is stored under key.
	Load(ctx context.Context, key string) (*sale.Session, error)
	Clear(ctx context.Context, key string) error
}

// Key scopes a session to one operator in one company.
func Key(operatorID, companyID uint) string {
	return fmt.Sprintf("pdv:session:%d:%d", operatorID, companyID)
}
