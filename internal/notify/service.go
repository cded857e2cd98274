// Package notify sends operational email through Resend.
package notify

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/resend/resend-go/v2"

	"github.com/FACorreiaa/kharcha/pkg/money"
)

// Service wraps the Resend client. With no API key configured it degrades to
// logging the digest instead of sending it.
type Service struct {
	client *resend.Client
	from   string
	to     string
	logger *slog.Logger
}

// NewService creates the notifier. apiKey and to may be empty.
func NewService(apiKey, from, to string, logger *slog.Logger) *Service {
	var client *resend.Client
	if apiKey != "" {
		client = resend.NewClient(apiKey)
	}
	return &Service{client: client, from: from, to: to, logger: logger}
}

// DigestStats is one week of platform activity.
type DigestStats struct {
	ActiveUsers     int
	ExpensesLogged  int
	TotalMinor      int64
	TopCategory     string
	UsersReconciled int64
}

// SendWeeklyDigest emails the weekly activity summary to the ops address.
func (s *Service) SendWeeklyDigest(stats DigestStats) error {
	if s.client == nil || s.to == "" {
		s.logger.Info("digest email not configured, logging instead",
			slog.Int("active_users", stats.ActiveUsers),
			slog.Int("expenses_logged", stats.ExpensesLogged),
			slog.Int64("total_minor", stats.TotalMinor))
		return nil
	}

	_, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      []string{s.to},
		Subject: "Kharcha weekly digest",
		Html:    digestHTML(stats),
	})
	if err != nil {
		return fmt.Errorf("failed to send digest: %w", err)
	}
	s.logger.Info("weekly digest sent", slog.String("to", s.to))
	return nil
}

func digestHTML(stats DigestStats) string {
	total := money.New(stats.TotalMinor, "BDT")
	var b strings.Builder
	b.WriteString("<h2>Kharcha weekly digest</h2><ul>")
	fmt.Fprintf(&b, "<li>Active users: %d</li>", stats.ActiveUsers)
	fmt.Fprintf(&b, "<li>Expenses logged: %d</li>", stats.ExpensesLogged)
	fmt.Fprintf(&b, "<li>Total spend: %s</li>", total.Display())
	if stats.TopCategory != "" {
		fmt.Fprintf(&b, "<li>Top category: %s</li>", stats.TopCategory)
	}
	fmt.Fprintf(&b, "<li>Users reconciled overnight: %d</li>", stats.UsersReconciled)
	b.WriteString("</ul>")
	return b.String()
}
