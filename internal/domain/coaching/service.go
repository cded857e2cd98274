package coaching

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FACorreiaa/kharcha/internal/domain/analysis"
	"github.com/FACorreiaa/kharcha/internal/domain/signals"
	"github.com/FACorreiaa/kharcha/pkg/money"
)

// Advisor generates free-form coaching text. May be an AI adapter or a
// deterministic stub; failures fall back to the rule-based tip.
type Advisor interface {
	GenerateReply(ctx context.Context, prompt string) (string, error)
}

// Service produces coaching advice grounded in the user's recent spending.
type Service struct {
	sessions SessionStore
	analysis *analysis.Service
	advisor  Advisor
	logger   *slog.Logger
}

// NewService creates a coaching service. advisor may be nil.
func NewService(sessions SessionStore, analysisSvc *analysis.Service, advisor Advisor, logger *slog.Logger) *Service {
	return &Service{sessions: sessions, analysis: analysisSvc, advisor: advisor, logger: logger}
}

// Sessions exposes the session store for the routing layer.
func (s *Service) Sessions() SessionStore {
	return s.sessions
}

// End closes the user's active session so routing stops treating follow-up
// messages as coaching.
func (s *Service) End(ctx context.Context, userIDHash string) error {
	return s.sessions.End(ctx, userIDHash)
}

// Advice is one coaching reply.
type Advice struct {
	Text        string
	TopCategory string
	TotalMinor  int64
}

// Advise opens or continues a coaching session and returns advice based on
// the trailing 30 days of spending.
func (s *Service) Advise(ctx context.Context, userIDHash string, bengali bool) (*Advice, error) {
	if _, err := s.sessions.Start(ctx, userIDHash); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	win := signals.TimeWindow{From: now.AddDate(0, 0, -30), To: now, Description: "last 30 days"}
	sum, err := s.analysis.Summarize(ctx, userIDHash, win)
	if err != nil {
		return nil, err
	}

	advice := &Advice{
		TopCategory: sum.TopCategory(),
		TotalMinor:  sum.TotalMinor,
		Text:        ruleBasedTip(sum, bengali),
	}

	if s.advisor != nil {
		prompt := fmt.Sprintf(
			"User spent %s in the last 30 days, mostly on %s. Give one short, practical savings tip.%s",
			sum.Total().Display(), advice.TopCategory, languageHint(bengali))
		if text, aiErr := s.advisor.GenerateReply(ctx, prompt); aiErr == nil && text != "" {
			advice.Text = text
		} else if aiErr != nil {
			s.logger.WarnContext(ctx, "advisor unavailable, using rule-based tip", slog.Any("error", aiErr))
		}
	}

	return advice, nil
}

func languageHint(bengali bool) string {
	if bengali {
		return " Reply in Bengali."
	}
	return ""
}

func ruleBasedTip(sum *analysis.Summary, bengali bool) string {
	top := sum.TopCategory()
	total := money.New(sum.TotalMinor, sum.CurrencyCode).Display()

	if top == "" {
		if bengali {
			return "গত ৩০ দিনে কোনো খরচ পাইনি। আগে কিছু খরচ লিখুন, তারপর পরামর্শ দিতে পারব।"
		}
		return "I don't see any expenses in the last 30 days yet. Log a few and I can give targeted advice."
	}
	if bengali {
		return fmt.Sprintf("গত ৩০ দিনে আপনার মোট খরচ %s, সবচেয়ে বেশি %s খাতে। এই খাতে সাপ্তাহিক একটা সীমা ঠিক করে দেখুন।", total, top)
	}
	return fmt.Sprintf("You spent %s in the last 30 days, mostly on %s. Try setting a weekly cap for that category.", total, top)
}
