// Package chat is the message pipeline: normalize, extract signals, route,
// dispatch to the intent handler, and render a bilingual reply.
package chat

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"regexp"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/kharcha/internal/ai"
	"github.com/FACorreiaa/kharcha/internal/domain/analysis"
	"github.com/FACorreiaa/kharcha/internal/domain/categorization"
	"github.com/FACorreiaa/kharcha/internal/domain/coaching"
	"github.com/FACorreiaa/kharcha/internal/domain/expense"
	"github.com/FACorreiaa/kharcha/internal/domain/faq"
	"github.com/FACorreiaa/kharcha/internal/domain/routing"
	"github.com/FACorreiaa/kharcha/internal/domain/signals"
	"github.com/FACorreiaa/kharcha/pkg/observability"
)

const (
	ledgerWindow    = 30 * 24 * time.Hour
	ledgerCacheSize = 4096
	ledgerCacheTTL  = 5 * time.Minute
)

// Inbound is one webhook message.
type Inbound struct {
	UserID    string // raw platform id, hashed before any storage access
	MessageID string
	Text      string
}

// Outbound is the pipeline's answer.
type Outbound struct {
	Reply           string
	Intent          routing.Intent
	ReasonCodes     []string
	MatchedPatterns []string
	Confidence      float64
	Category        string
	AmountMinor     int64
}

// Dependencies wires the chat service.
type Dependencies struct {
	Router     *routing.Router
	Categories *categorization.Engine
	Expenses   *expense.Service
	Corrector  *expense.Corrector
	Analysis   *analysis.Service
	Coaching   *coaching.Service
	FAQ        *faq.Index
	AI         ai.Adapter // optional
	Location   *time.Location
	Logger     *slog.Logger
}

// Service orchestrates message handling.
type Service struct {
	router       *routing.Router
	categories   *categorization.Engine
	expenses     *expense.Service
	corrector    *expense.Corrector
	analysis     *analysis.Service
	coaching     *coaching.Service
	faq          *faq.Index
	ai           ai.Adapter
	loc          *time.Location
	logger       *slog.Logger
	ledgerCounts *expirable.LRU[string, int]
}

// NewService creates the chat pipeline.
func NewService(deps Dependencies) *Service {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		router:       deps.Router,
		categories:   deps.Categories,
		expenses:     deps.Expenses,
		corrector:    deps.Corrector,
		analysis:     deps.Analysis,
		coaching:     deps.Coaching,
		faq:          deps.FAQ,
		ai:           deps.AI,
		loc:          loc,
		logger:       deps.Logger,
		ledgerCounts: expirable.NewLRU[string, int](ledgerCacheSize, nil, ledgerCacheTTL),
	}
}

// HashUserID hashes a raw platform user id. Raw ids never reach storage.
func HashUserID(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// correction-style message: a revision phrase plus a number
var correctionRe = regexp.MustCompile(`(?:\b(?:i meant|sorry|actually|typo|should be|wrong amount)\b|আসলে|ভুল).*\d|\d.*(?:আসলে|ভুল)`)

// wrap-up phrase inside a coaching session
var coachingEndRe = regexp.MustCompile(`\b(?:stop|enough|that'?s all|i'?m done|done for now|no thanks)\b|থাক|যথেষ্ট|শেষ কর`)

// HandleMessage runs the full pipeline for one inbound message.
func (s *Service) HandleMessage(ctx context.Context, in Inbound) (*Outbound, error) {
	ctx, span := otel.Tracer("chat").Start(ctx, "HandleMessage",
		trace.WithAttributes(attribute.String("message_id", in.MessageID)))
	defer span.End()
	start := time.Now()

	userHash := HashUserID(in.UserID)
	sig := signals.Extract(in.Text, s.loc,
		signals.WithLedgerCount(s.ledgerCount(ctx, userHash)),
		signals.WithCoachingSession(s.inCoachingSession(ctx, userHash)),
	)

	if !s.router.ShouldUseDeterministicRouting(sig) {
		observability.RoutingGateDeferrals.Inc()
		if out := s.aiFallback(ctx, sig); out != nil {
			return out, nil
		}
		// no AI configured, deterministic path handles it anyway
	}

	res := s.router.Route(in.Text, sig)
	span.SetAttributes(attribute.String("intent", string(res.Intent)))

	out := s.dispatch(ctx, in, userHash, sig, res)
	out.Intent = res.Intent
	out.ReasonCodes = res.ReasonCodes
	out.MatchedPatterns = res.MatchedPatterns
	out.Confidence = res.Confidence

	observability.MessagesTotal.WithLabelValues(string(res.Intent)).Inc()
	observability.MessageDuration.WithLabelValues(string(res.Intent)).Observe(time.Since(start).Seconds())
	s.logger.InfoContext(ctx, "message handled",
		slog.String("intent", string(res.Intent)),
		slog.Any("reason_codes", res.ReasonCodes),
		slog.Float64("confidence", res.Confidence))
	return out, nil
}

func (s *Service) dispatch(ctx context.Context, in Inbound, userHash string, sig signals.Signals, res routing.Result) *Outbound {
	bengali := sig.IsBengali

	switch res.Intent {
	case routing.IntentAdmin:
		return &Outbound{Reply: s.handleAdmin(sig, userHash, res)}

	case routing.IntentPCAAudit:
		return &Outbound{Reply: replyAuditMode(bengali)}

	case routing.IntentExpenseLog:
		return s.handleExpenseLog(ctx, in, userHash, sig)

	case routing.IntentClarifyExpense:
		if correctionRe.MatchString(sig.NormalizedText) {
			return s.handleCorrection(ctx, in, userHash, bengali)
		}
		return &Outbound{Reply: replyClarifyExpense(bengali)}

	case routing.IntentCategoryBreakdown:
		return s.handleCategoryBreakdown(ctx, userHash, sig)

	case routing.IntentAnalysis:
		return s.handleAnalysis(ctx, userHash, sig)

	case routing.IntentFAQ:
		if answer, ok := s.faq.Answer(sig.NormalizedText, bengali); ok {
			return &Outbound{Reply: answer}
		}
		return &Outbound{Reply: replyFAQFallback(bengali)}

	case routing.IntentCoaching:
		if sig.InCoachingSession && coachingEndRe.MatchString(sig.NormalizedText) {
			if err := s.coaching.End(ctx, userHash); err != nil {
				s.logger.WarnContext(ctx, "failed to end coaching session", slog.Any("error", err))
			}
			return &Outbound{Reply: replyCoachingEnded(bengali)}
		}
		advice, err := s.coaching.Advise(ctx, userHash, bengali)
		if err != nil {
			s.logger.ErrorContext(ctx, "coaching failed", slog.Any("error", err))
			return &Outbound{Reply: replyUnknown(bengali)}
		}
		return &Outbound{Reply: advice.Text, Category: advice.TopCategory}

	case routing.IntentSmalltalk:
		return &Outbound{Reply: replySmalltalk(bengali)}

	default:
		if correctionRe.MatchString(sig.NormalizedText) {
			return s.handleCorrection(ctx, in, userHash, bengali)
		}
		if out := s.aiFallback(ctx, sig); out != nil {
			return out
		}
		return &Outbound{Reply: replyUnknown(bengali)}
	}
}

func (s *Service) handleExpenseLog(ctx context.Context, in Inbound, userHash string, sig signals.Signals) *Outbound {
	result, err := s.expenses.Log(ctx, expense.LogRequest{
		UserIDHash: userHash,
		MessageID:  in.MessageID,
		Text:       in.Text,
		Signals:    sig,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "expense log failed", slog.Any("error", err))
		return &Outbound{Reply: replyClarifyExpense(sig.IsBengali)}
	}
	if !result.Duplicate {
		observability.ExpensesLogged.WithLabelValues(result.Expense.Category).Inc()
		s.ledgerCounts.Remove(userHash)
	}
	return &Outbound{
		Reply:       replyExpenseLogged(result.Expense, sig.IsBengali),
		Category:    result.Expense.Category,
		AmountMinor: result.Expense.AmountMinor,
	}
}

func (s *Service) handleCorrection(ctx context.Context, in Inbound, userHash string, bengali bool) *Outbound {
	out, err := s.corrector.Correct(ctx, expense.CorrectionRequest{
		UserIDHash: userHash,
		MessageID:  in.MessageID,
		Text:       in.Text,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "correction failed", slog.Any("error", err))
		return &Outbound{Reply: replyCorrectionFailed(bengali)}
	}
	observability.CorrectionsTotal.WithLabelValues(string(out.Kind)).Inc()
	s.ledgerCounts.Remove(userHash)
	reply := &Outbound{Reply: replyCorrection(out, bengali)}
	if out.New != nil {
		reply.Category = out.New.Category
		reply.AmountMinor = out.New.AmountMinor
	}
	return reply
}

func (s *Service) handleAnalysis(ctx context.Context, userHash string, sig signals.Signals) *Outbound {
	win := s.windowOrThisMonth(sig)
	sum, err := s.analysis.Summarize(ctx, userHash, win)
	if err != nil {
		s.logger.ErrorContext(ctx, "summary failed", slog.Any("error", err))
		return &Outbound{Reply: replyUnknown(sig.IsBengali)}
	}
	return &Outbound{Reply: replySummary(sum, sig.IsBengali), Category: sum.TopCategory()}
}

func (s *Service) handleCategoryBreakdown(ctx context.Context, userHash string, sig signals.Signals) *Outbound {
	category, _, ok := s.categories.Detect(sig.NormalizedText)
	if !ok {
		return s.handleAnalysis(ctx, userHash, sig)
	}
	win := s.windowOrThisMonth(sig)
	out, err := s.analysis.CategoryBreakdown(ctx, userHash, category, win)
	if err != nil {
		s.logger.ErrorContext(ctx, "breakdown failed", slog.Any("error", err))
		return &Outbound{Reply: replyUnknown(sig.IsBengali)}
	}
	return &Outbound{
		Reply:       replyCategoryBreakdown(out, "BDT", sig.IsBengali),
		Category:    category,
		AmountMinor: out.TotalMinor,
	}
}

func (s *Service) handleAdmin(sig signals.Signals, userHash string, res routing.Result) string {
	switch {
	case sig.NormalizedText == "/id":
		return "your id: " + userHash[:16]
	case sig.NormalizedText == "/status":
		return "ok: routing deterministic, ledger reachable"
	case sig.NormalizedText == "/debug":
		return "intent=" + string(res.Intent) + " reasons=" + joinCodes(res.ReasonCodes)
	default:
		return adminHelp(sig.IsBengali)
	}
}

func joinCodes(codes []string) string {
	out := ""
	for i, c := range codes {
		if i > 0 {
			out += ","
		}
		out += c
	}
	return out
}

// windowOrThisMonth uses the parsed window, defaulting to the current
// calendar month.
func (s *Service) windowOrThisMonth(sig signals.Signals) signals.TimeWindow {
	if sig.Window != nil {
		return *sig.Window
	}
	now := time.Now().In(s.loc)
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)
	return signals.TimeWindow{From: from, To: from.AddDate(0, 1, 0), Description: "this month"}
}

func (s *Service) ledgerCount(ctx context.Context, userHash string) int {
	if n, ok := s.ledgerCounts.Get(userHash); ok {
		return n
	}
	n, err := s.expenses.LedgerCount(ctx, userHash, ledgerWindow)
	if err != nil {
		s.logger.WarnContext(ctx, "ledger count unavailable", slog.Any("error", err))
		return 0
	}
	s.ledgerCounts.Add(userHash, n)
	return n
}

func (s *Service) inCoachingSession(ctx context.Context, userHash string) bool {
	session, err := s.coaching.Sessions().Get(ctx, userHash)
	if err != nil {
		s.logger.WarnContext(ctx, "session lookup failed", slog.Any("error", err))
		return false
	}
	return session != nil
}

func (s *Service) aiFallback(ctx context.Context, sig signals.Signals) *Outbound {
	if s.ai == nil {
		return nil
	}
	reply, err := s.ai.GenerateReply(ctx, sig.NormalizedText)
	if err != nil || reply == "" {
		if err != nil {
			s.logger.WarnContext(ctx, "ai fallback failed", slog.Any("error", err))
		}
		return nil
	}
	return &Outbound{Reply: reply, Intent: routing.IntentUnknown, Confidence: 0.5}
}
