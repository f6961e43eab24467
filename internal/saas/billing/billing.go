// Package billing resolves a tenant's subscription reference to the quota
// entitlement its plan grants. Entitlements are derived per request and
// never persisted; a failed lookup yields the zero Entitlement, which
// denies all quota-gated creation.
package billing

import (
	"context"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

// Source resolves subscription references to entitlements.
type Source interface {
	// Entitlement returns the quota snapshot for the given subscription
	// reference. An empty reference or an unknown subscription returns the
	// zero Entitlement and a nil error; only transport failures error.
	Entitlement(ctx context.Context, subscriptionRef string) (domain.Entitlement, error)
}

// StaticSource serves a fixed entitlement table keyed by subscription
// reference. Used in development and tests.
type StaticSource struct {
	Plans map[string]domain.Entitlement
}

func (s *StaticSource) Entitlement(_ context.Context, subscriptionRef string) (domain.Entitlement, error) {
	if subscriptionRef == "" {
		return domain.Entitlement{}, nil
	}
	return s.Plans[subscriptionRef], nil
}

// DefaultPlans is the built-in plan table used when no billing service is
// configured.
func DefaultPlans() map[string]domain.Entitlement {
	return map[string]domain.Entitlement{
		"free":       {MaxWorkspaces: 1, MaxUsers: 2, MaxMonthlyContracts: 3},
		"starter":    {MaxWorkspaces: 2, MaxUsers: 5, MaxMonthlyContracts: 10},
		"pro":        {MaxWorkspaces: 5, MaxUsers: 12, MaxMonthlyContracts: 45},
		"enterprise": {MaxWorkspaces: 12, MaxUsers: 30, MaxMonthlyContracts: 120},
	}
}
