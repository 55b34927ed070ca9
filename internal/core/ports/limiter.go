// Package ports define contratos que conectam o domínio a implementações externas.
package ports

import (
	"context"

	"github.com/ratewall/ratewall/internal/core/domain"
)

// Limiter decides whether a request identified by key may proceed. Keys are
// opaque: equal strings share one window, distinct strings are independent
// clients with isolated budgets.
type Limiter interface {
	Allow(ctx context.Context, key string) (domain.Decision, error)
}
