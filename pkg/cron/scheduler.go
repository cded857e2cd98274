// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/FACorreiaa/kharcha/internal/domain/expense"
	"github.com/FACorreiaa/kharcha/internal/notify"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron       *cron.Cron
	store      expense.Store
	notifier   *notify.Service
	digestSpec string
	logger     *slog.Logger

	lastReconciled int64
}

// NewScheduler creates a new job scheduler. digestSpec is a standard 5-field
// cron expression for the weekly digest.
func NewScheduler(store expense.Store, notifier *notify.Service, digestSpec string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:       c,
		store:      store,
		notifier:   notifier,
		digestSpec: digestSpec,
		logger:     logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	// Totals reconciliation: runs nightly at 2:00 AM
	if _, err := s.cron.AddFunc("0 2 * * *", s.reconcileTotals); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.digestSpec, s.sendWeeklyDigest); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers both jobs (for testing/admin).
func (s *Scheduler) RunNow() {
	go func() {
		s.reconcileTotals()
		s.sendWeeklyDigest()
	}()
}

// reconcileTotals re-derives users' running totals from the active expense
// rows. Corrections keep totals current in the hot path; this repairs drift
// left by crashes between the insert and the totals update.
func (s *Scheduler) reconcileTotals() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	changed, err := s.store.ReconcileTotals(ctx)
	if err != nil {
		s.logger.Error("totals reconciliation failed", slog.Any("error", err))
		return
	}
	s.lastReconciled = changed

	if changed > 0 {
		s.logger.Warn("totals drift repaired", slog.Int64("users_changed", changed))
		return
	}
	s.logger.Info("totals reconciliation completed, no drift")
}

// sendWeeklyDigest aggregates the trailing week of activity and emails it to
// the ops address.
func (s *Scheduler) sendWeeklyDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	to := time.Now()
	from := to.AddDate(0, 0, -7)

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users for digest", slog.Any("error", err))
		return
	}

	stats := notify.DigestStats{UsersReconciled: s.lastReconciled}
	byCategory := make(map[string]int64)

	for _, u := range users {
		active, err := s.store.ListActive(ctx, u.UserIDHash, from, to)
		if err != nil {
			s.logger.Warn("skipping user in digest",
				slog.String("user", u.UserIDHash), slog.Any("error", err))
			continue
		}
		if len(active) == 0 {
			continue
		}
		stats.ActiveUsers++
		stats.ExpensesLogged += len(active)
		for _, e := range active {
			stats.TotalMinor += e.AmountMinor
			byCategory[e.Category] += e.AmountMinor
		}
	}

	var best int64
	for category, total := range byCategory {
		if total > best {
			best = total
			stats.TopCategory = category
		}
	}

	if err := s.notifier.SendWeeklyDigest(stats); err != nil {
		s.logger.Error("failed to send weekly digest", slog.Any("error", err))
		return
	}

	s.logger.Info("weekly digest completed",
		slog.Int("active_users", stats.ActiveUsers),
		slog.Int("expenses", stats.ExpensesLogged),
	)
}
