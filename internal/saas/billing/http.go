package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AlexandroMtzG/remix-saas-kit-sub000/internal/saas/domain"
)

// HTTPSource queries the billing provider's entitlement endpoint.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPSource(baseURL, apiKey string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type entitlementResponse struct {
	MaxWorkspaces       int `json:"max_workspaces"`
	MaxUsers            int `json:"max_users"`
	MaxMonthlyContracts int `json:"max_monthly_contracts"`
}

// Entitlement fetches the plan quota for a subscription. Any non-200
// response maps to the zero Entitlement without error, so a missing or
// lapsed subscription simply denies quota-gated creation.
func (s *HTTPSource) Entitlement(ctx context.Context, subscriptionRef string) (domain.Entitlement, error) {
	if subscriptionRef == "" {
		return domain.Entitlement{}, nil
	}

	endpoint := fmt.Sprintf("%s/v1/subscriptions/%s/entitlement", s.baseURL, url.PathEscape(subscriptionRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Entitlement{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Entitlement{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Entitlement{}, nil
	}

	var body entitlementResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Entitlement{}, err
	}

	return domain.Entitlement{
		MaxWorkspaces:       body.MaxWorkspaces,
		MaxUsers:            body.MaxUsers,
		MaxMonthlyContracts: body.MaxMonthlyContracts,
	}, nil
}
