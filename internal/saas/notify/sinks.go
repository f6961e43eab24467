package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// HTTPSink posts events to an external notification relay.
type HTTPSink struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPSink(endpoint, apiKey string) *HTTPSink {
	return &HTTPSink{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

func (s *HTTPSink) Deliver(ctx context.Context, e Event) error {
	payload, err := json.Marshal(struct {
		Kind           string   `json:"kind"`
		Recipients     []string `json:"recipients"`
		EmployeeEmails []string `json:"employee_emails,omitempty"`
		Subject        string   `json:"subject"`
		ActorID        string   `json:"actor_id"`
		Message        string   `json:"message"`
		Attachment     string   `json:"attachment,omitempty"`
	}{e.Kind, e.RecipientIDs, e.EmployeeEmails, e.Subject, e.ActorID, e.Message, e.Attachment})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify relay returned %d", resp.StatusCode)
	}
	return nil
}

// LogSink writes events to the logger. Used in development and tests.
type LogSink struct {
	Logger *slog.Logger
}

func (s *LogSink) Deliver(_ context.Context, e Event) error {
	s.Logger.Info("notification",
		slog.String("kind", e.Kind),
		slog.String("subject", e.Subject),
		slog.String("actor_id", e.ActorID),
		slog.Int("recipients", len(e.RecipientIDs)),
		slog.Int("employees", len(e.EmployeeEmails)),
		slog.String("message", e.Message))
	return nil
}
