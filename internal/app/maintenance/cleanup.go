// Package maintenance runs the background jobs that keep the cache and
// catalog tables from accumulating dead rows.
package maintenance

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ansaf01/fg-united/internal/cache"
	"github.com/ansaf01/fg-united/internal/models"
	"github.com/ansaf01/fg-united/pkg/logger"
)

const (
	defaultRetentionDays = 90
	defaultSweepSpec     = "@hourly"
	defaultPruneSpec     = "@daily"
)

// Sweeper periodically purges expired cache entries and hard-deletes catalog
// rows that have sat soft-deleted past the retention window. Redis expires
// keys on its own; the database and memory stores need an external sweep.
type Sweeper struct {
	db       *gorm.DB
	database *cache.DatabaseStore
	memory   *cache.MemoryStore
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger

	retention int
	sweepSpec string
	pruneSpec string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetentionDays adjusts how long soft-deleted catalog rows are kept.
func WithRetentionDays(days int) Option {
	return func(s *Sweeper) {
		if days > 0 {
			s.retention = days
		}
	}
}

// WithSweepSchedule overrides the cron specification for the cache sweep.
func WithSweepSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.sweepSpec = spec
		}
	}
}

// WithPruneSchedule overrides the cron specification for catalog pruning.
func WithPruneSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.pruneSpec = spec
		}
	}
}

// NewSweeper constructs a Sweeper. Nil stores are skipped, so callers pass
// only the backends actually in use.
func NewSweeper(db *gorm.DB, database *cache.DatabaseStore, memory *cache.MemoryStore, opts ...Option) *Sweeper {
	sweeper := &Sweeper{
		db:        db,
		database:  database,
		memory:    memory,
		now:       time.Now,
		retention: defaultRetentionDays,
		sweepSpec: defaultSweepSpec,
		pruneSpec: defaultPruneSpec,
		log:       logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(sweeper)
	}

	if sweeper.cron == nil {
		sweeper.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return sweeper
}

// Start registers the jobs with the scheduler and launches it when at least
// one job has something to work on.
func (s *Sweeper) Start() error {
	registered := false

	if s.database != nil || s.memory != nil {
		if _, err := s.cron.AddFunc(s.sweepSpec, func() {
			if err := s.sweepCache(context.Background()); err != nil {
				s.log.Warn("cache sweep failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		registered = true
	}

	if s.db != nil {
		if _, err := s.cron.AddFunc(s.pruneSpec, func() {
			if err := s.pruneCatalog(context.Background()); err != nil {
				s.log.Warn("catalog prune failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
		registered = true
	}

	if registered {
		s.cron.Start()
	}
	return nil
}

// RunOnce performs every job outside the schedule, used on shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	var errs error
	if err := s.sweepCache(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if s.db != nil {
		if err := s.pruneCatalog(ctx); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

func (s *Sweeper) sweepCache(ctx context.Context) error {
	if s.database != nil {
		removed, err := s.database.DeleteExpired(ctx)
		if err != nil {
			return fmt.Errorf("maintenance: sweep cache: %w", err)
		}
		if removed > 0 {
			s.log.Debug("cache entries purged", zap.Int64("removed", removed))
		}
	}
	if s.memory != nil {
		s.memory.Sweep()
	}
	return nil
}

// pruneCatalog removes products and categories that were soft-deleted more
// than the retention window ago. Orders never reference them past that point.
func (s *Sweeper) pruneCatalog(ctx context.Context) error {
	cutoff := s.now().AddDate(0, 0, -s.retention)

	var errs error
	result := s.db.WithContext(ctx).
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Delete(&models.Product{})
	if result.Error != nil {
		errs = multierr.Append(errs, fmt.Errorf("maintenance: prune products: %w", result.Error))
	} else if result.RowsAffected > 0 {
		s.log.Info("pruned soft-deleted products", zap.Int64("removed", result.RowsAffected))
	}

	result = s.db.WithContext(ctx).
		Where("is_deleted = ? AND deleted_at < ?", true, cutoff).
		Delete(&models.Category{})
	if result.Error != nil {
		errs = multierr.Append(errs, fmt.Errorf("maintenance: prune categories: %w", result.Error))
	} else if result.RowsAffected > 0 {
		s.log.Info("pruned soft-deleted categories", zap.Int64("removed", result.RowsAffected))
	}

	return errs
}
