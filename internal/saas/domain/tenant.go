package domain

import "time"

// Tenant is a billed organization account. It owns workspaces and
// memberships; its subscription reference is the key into the billing
// provider's entitlement lookup.
type Tenant struct {
	ID                string
	Name              string
	BillingCustomerID string // billing provider customer reference, can be empty
	SubscriptionID    string // active subscription reference, empty = no plan
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
