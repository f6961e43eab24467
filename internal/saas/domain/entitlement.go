package domain

// Entitlement is the quota snapshot granted by a tenant's active
// subscription tier. It is derived per-request from the billing provider,
// never persisted.
//
// The zero value is the "no entitlement" sentinel: every quota reads 0 and
// therefore denies creation (fail-closed). A missing subscription, a billing
// provider outage, and a genuinely zero-quota plan are indistinguishable on
// purpose.
type Entitlement struct {
	MaxWorkspaces       int
	MaxUsers            int
	MaxMonthlyContracts int
}

// QuotaKind names a countable resource governed by an entitlement.
type QuotaKind int

const (
	QuotaWorkspaces QuotaKind = iota
	QuotaUsers
	QuotaMonthlyContracts
)

func (k QuotaKind) String() string {
	switch k {
	case QuotaWorkspaces:
		return "workspaces"
	case QuotaUsers:
		return "users"
	case QuotaMonthlyContracts:
		return "monthly_contracts"
	default:
		return "unknown"
	}
}

// Limit returns the quota for the given kind.
func (e Entitlement) Limit(kind QuotaKind) int {
	switch kind {
	case QuotaWorkspaces:
		return e.MaxWorkspaces
	case QuotaUsers:
		return e.MaxUsers
	case QuotaMonthlyContracts:
		return e.MaxMonthlyContracts
	default:
		return 0
	}
}
