package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tobbe/lexalpha/internal/domain"
)

// Notifier dispatches an alert for one accepted verdict. Failures are the
// caller's to log and swallow; they never fail the job.
type Notifier interface {
	SendVerdictAlert(ctx context.Context, l *domain.Legislation, v *domain.Verdict) error
	IsEnabled() bool
}

// MailerConfig holds configuration for the mail service.
type MailerConfig struct {
	Enabled   bool
	APIKey    string
	BaseURL   string
	From      string
	Recipient string
}

// MailerService sends verdict alerts through a Resend-compatible HTTP API.
type MailerService struct {
	client    *resty.Client
	endpoint  string
	from      string
	recipient string
	enabled   bool
}

// NewMailerService creates a new mailer service. A disabled config yields a
// no-op service so callers never branch on nil.
func NewMailerService(cfg *MailerConfig) *MailerService {
	if cfg == nil || !cfg.Enabled {
		return &MailerService{enabled: false}
	}

	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(15 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}

	return &MailerService{
		client:    client,
		endpoint:  baseURL + "/emails",
		from:      cfg.From,
		recipient: cfg.Recipient,
		enabled:   true,
	}
}

// IsEnabled returns whether alerting is configured.
func (s *MailerService) IsEnabled() bool {
	return s.enabled
}

type mailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type mailResponse struct {
	ID      string `json:"id"`
	Message string `json:"message,omitempty"`
}

// SendVerdictAlert emails the verdict summary to the configured recipient.
func (s *MailerService) SendVerdictAlert(ctx context.Context, l *domain.Legislation, v *domain.Verdict) error {
	if !s.enabled {
		return nil
	}

	req := mailRequest{
		From:    s.from,
		To:      []string{s.recipient},
		Subject: fmt.Sprintf("Signal: %s (confidence %d)", v.LawTitle, v.ConfidenceScore),
		HTML:    renderVerdictHTML(l, v),
	}

	var resp mailResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return fmt.Errorf("mail API returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	return nil
}

func renderVerdictHTML(l *domain.Legislation, v *domain.Verdict) string {
	var b strings.Builder

	fmt.Fprintf(&b, "<h2>%s</h2>", v.LawTitle)
	fmt.Fprintf(&b, "<p><b>Confidence %d</b> · horizon %d months · <a href=%q>source</a></p>",
		v.ConfidenceScore, v.TimeHorizonMonths, l.SourceURL)
	fmt.Fprintf(&b, "<p>%s</p>", v.Summary)
	fmt.Fprintf(&b, "<h3>Hidden opportunity</h3><p>%s</p>", v.HiddenOpportunity)

	if len(v.AffectedSectors) > 0 {
		b.WriteString("<h3>Sectors</h3><ul>")
		for _, sec := range v.AffectedSectors {
			fmt.Fprintf(&b, "<li><b>%s</b> (%d): %s — %s</li>",
				sec.Sector, sec.ConvictionScore, sec.Rationale, sec.Timeframe)
		}
		b.WriteString("</ul>")
	}

	if len(v.CompanyExposures) > 0 {
		b.WriteString("<h3>Companies</h3><ul>")
		for _, c := range v.CompanyExposures {
			name := c.Company
			if c.Ticker != "" {
				name = fmt.Sprintf("%s (%s)", c.Company, c.Ticker)
			}
			fmt.Fprintf(&b, "<li><b>%s</b> (%d): %s — %s</li>",
				name, c.ConvictionScore, c.Rationale, c.Timeframe)
		}
		b.WriteString("</ul>")
	}

	fmt.Fprintf(&b, "<h3>Strategy</h3><p>%s via %s, entry %s</p>",
		v.TradeStrategy.Direction,
		strings.Join(v.TradeStrategy.Instruments, ", "),
		v.TradeStrategy.EntryWindow)

	return b.String()
}
