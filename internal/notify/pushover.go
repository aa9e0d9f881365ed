// Package notify delivers stargazing alerts through a Pushover-style push
// notification endpoint.
package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"stargazer/internal/models"
	"stargazer/pkg/client"
)

// MessageHeader is the first line of every stargazing notification.
const MessageHeader = "Upcoming Stargazing Dates!"

// Pushover sends push notifications. Delivery is synchronous and
// result-returning: a non-2xx response or exhausted retries is an error.
type Pushover struct {
	*client.BaseClient
	token   string
	user    string
	baseURL string
	logger  *zap.Logger
}

func NewPushover(token, user string, config client.ClientConfig, logger *zap.Logger) *Pushover {
	baseClient := client.NewBaseClient("pushover", config, logger)
	return &Pushover{
		BaseClient: baseClient,
		token:      token,
		user:       user,
		baseURL:    "https://api.pushover.net",
		logger:     logger,
	}
}

// WithBaseURL overrides the API endpoint, for tests.
func (p *Pushover) WithBaseURL(baseURL string) *Pushover {
	p.baseURL = baseURL
	return p
}

// BuildMessage renders the notification body for a non-empty sequence of
// calendar dates: a header followed by one indented line per date.
func BuildMessage(dates []string) (string, error) {
	var b strings.Builder
	b.WriteString(MessageHeader)

	for _, d := range dates {
		t, err := time.Parse(models.DateFormat, d)
		if err != nil {
			return "", fmt.Errorf("bad stargazing date %q: %w", d, err)
		}
		b.WriteString(fmt.Sprintf("\n\t- %s %d, %d", t.Month(), t.Day(), t.Year()))
	}

	return b.String(), nil
}

// Send builds and delivers a notification for the given dates.
func (p *Pushover) Send(ctx context.Context, dates []string) error {
	if len(dates) == 0 {
		return fmt.Errorf("no dates to notify about")
	}

	message, err := BuildMessage(dates)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("token", p.token)
	form.Set("user", p.user)
	form.Set("message", message)

	endpoint := p.baseURL + "/1/messages.json"
	if _, err := p.PostFormWithRetry(ctx, endpoint, form); err != nil {
		return fmt.Errorf("notification delivery failed: %w", err)
	}

	p.logger.Info("Notification sent", zap.Int("dates", len(dates)))
	return nil
}
