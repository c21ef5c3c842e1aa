// Package rollover implements the once-per-calendar-day reset of the
// dashboard entities.
//
// The last reset date stored in settings guards the run: when it equals
// today nothing happens. Otherwise reminder flags are cleared and the finance
// month boundary is handled unconditionally, the full reset of fitness, work
// and routines (plus the retention sweep) runs only when enabled in settings,
// and the new date is written last.
package rollover

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/iudanet/lifedash/internal/client/store"
	"github.com/iudanet/lifedash/internal/clock"
	"github.com/iudanet/lifedash/internal/models"
)

// Report describes what a rollover run changed.
type Report struct {
	Today             string // дата запуска
	Closing           string // закрываемый день
	ArchivedMonth     string // месяц, книга которого заархивирована
	Skipped           bool   // сброс уже выполнялся сегодня
	FullReset         bool   // выполнялся полный сброс
	TasksArchived     int
	TasksCarried      int
	TasksMissed       int
	HabitsSnapshotted int
	Pruned            int // записи, удаленные политикой хранения
}

// Engine выполняет ежедневный сброс
type Engine struct {
	store  *store.Store
	clock  clock.Clock
	logger *slog.Logger
	newID  func() string
}

// NewEngine creates a rollover engine reading today's date from clk.
func NewEngine(s *store.Store, clk clock.Clock, logger *slog.Logger) *Engine {
	return &Engine{
		store:  s,
		clock:  clk,
		logger: logger,
		newID:  uuid.NewString,
	}
}

// Run performs the rollover for today. A second run on the same date is a
// no-op. On a write failure the epoch is not advanced so the next run retries.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	now := e.clock.Now()
	today := now.Format(models.DateLayout)

	settings := store.Read(ctx, e.store, models.EntitySettings, models.DefaultSettings())
	if settings.LastResetDate == today {
		return &Report{Today: today, Skipped: true}, nil
	}

	report := &Report{Today: today, Closing: settings.LastResetDate}
	if report.Closing == "" {
		report.Closing = now.AddDate(0, 0, -1).Format(models.DateLayout)
	}

	e.logger.Info("Running daily rollover",
		"today", today,
		"last_reset", settings.LastResetDate,
		"reset_enabled", settings.DailyResetEnabled)

	// Выполняется каждый новый день независимо от флага сброса
	settings.RemindersShown = map[string]bool{}

	finance := store.Read(ctx, e.store, models.EntityFinance, models.DefaultFinance())
	financeChanged, insight := e.rollFinance(&finance, now, settings.LastResetDate, report)

	if settings.DailyResetEnabled {
		report.FullReset = true

		fitness := store.Read(ctx, e.store, models.EntityFitness, models.DefaultFitness())
		resetFitness(&fitness, report.Closing)

		work := store.Read(ctx, e.store, models.EntityWork, models.DefaultWork())
		resetWork(&work, today, report)

		routines := store.Read(ctx, e.store, models.EntityRoutines, models.DefaultRoutines())
		resetRoutines(&routines, report)

		if days := settings.RetentionPolicy.Days(); days > 0 {
			cutoff := now.AddDate(0, 0, -days).Format(models.DateLayout)
			report.Pruned += pruneFitness(&fitness, cutoff)
			report.Pruned += pruneRoutines(&routines, cutoff)
			pruned := pruneFinance(&finance, cutoff)
			if pruned > 0 {
				financeChanged = true
				report.Pruned += pruned
			}
		}

		if err := e.write(ctx, models.EntityFitness, fitness); err != nil {
			return nil, err
		}
		if err := e.write(ctx, models.EntityWork, work); err != nil {
			return nil, err
		}
		if err := e.write(ctx, models.EntityRoutines, routines); err != nil {
			return nil, err
		}
	}

	if financeChanged {
		if err := e.write(ctx, models.EntityFinance, finance); err != nil {
			return nil, err
		}
	}

	if insight != nil {
		insights := store.Read(ctx, e.store, models.EntityInsights, models.DefaultInsights())
		insights.Items = upsertInsight(insights.Items, *insight)
		if err := e.write(ctx, models.EntityInsights, insights); err != nil {
			return nil, err
		}
	}

	// Эпоха сдвигается последней
	settings.LastResetDate = today
	if err := e.write(ctx, models.EntitySettings, settings); err != nil {
		return nil, err
	}

	e.logger.Info("Daily rollover completed",
		"today", today,
		"full_reset", report.FullReset,
		"archived_month", report.ArchivedMonth,
		"tasks_missed", report.TasksMissed,
		"tasks_carried", report.TasksCarried,
		"pruned", report.Pruned)

	return report, nil
}

func (e *Engine) write(ctx context.Context, key string, value any) error {
	if !e.store.Write(ctx, key, value) {
		return fmt.Errorf("failed to write %s during rollover", key)
	}
	return nil
}

// upsertInsight заменяет сводку за тот же месяц, если она уже есть
func upsertInsight(items []models.Insight, insight models.Insight) []models.Insight {
	for i := range items {
		if items[i].Kind == insight.Kind && items[i].Month == insight.Month {
			items[i] = insight
			return items
		}
	}
	return append(items, insight)
}
