// Package jobs runs the periodic maintenance and notification tasks.
package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"travelbot/internal/config"
	"travelbot/internal/repositories"
	"travelbot/internal/utils"
	"travelbot/internal/ws"
)

// Broadcaster pushes a frame to every connected chat client.
type Broadcaster interface {
	Broadcast(f ws.Frame) error
}

type Runner struct {
	Cache  repositories.APICacheRepository
	Travel repositories.TravelRepository
	Hub    Broadcaster
	Config config.JobsConfig
	Now    func() time.Time
	Logger *zap.Logger
}

func (r Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r Runner) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return utils.Logger()
}

// PurgeCache removes cached API responses older than the cache TTL.
func (r Runner) PurgeCache(ctx context.Context) (int64, error) {
	if r.Config.CacheTTL <= 0 {
		return 0, nil
	}
	n, err := r.Cache.PurgeOlderThan(ctx, r.now().Add(-r.Config.CacheTTL))
	if err != nil {
		return 0, fmt.Errorf("purge api cache: %w", err)
	}
	r.logger().Info("api cache purged", zap.Int64("rows", n))
	return n, nil
}

// BroadcastAdvisories sends today's Severe and High advisories to every
// connected client and returns how many were sent.
func (r Runner) BroadcastAdvisories(ctx context.Context) (int, error) {
	if r.Hub == nil {
		return 0, nil
	}
	today := utils.FormatDate(r.now())
	rows, err := r.Travel.SevereAdvisories(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("load advisories: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	parts := make([]string, len(rows))
	for i, a := range rows {
		parts[i] = fmt.Sprintf("%s (%s): %s", a.City, a.AdvisoryLevel, a.Reason)
	}
	frame := ws.Frame{
		Type: ws.FrameAdvisory,
		Text: fmt.Sprintf("Travel advisories issued on %s: %s", today, strings.Join(parts, "; ")),
		Data: rows,
	}
	if err := r.Hub.Broadcast(frame); err != nil {
		return 0, fmt.Errorf("broadcast advisories: %w", err)
	}
	r.logger().Info("advisories broadcast", zap.Int("count", len(rows)))
	return len(rows), nil
}

// Start schedules the jobs and blocks until ctx is done.
func (r Runner) Start(ctx context.Context) error {
	scheduler := gocron.NewScheduler(time.Local)
	scheduler.SingletonModeAll()

	if r.Config.CachePurgeInterval > 0 {
		if _, err := scheduler.Every(r.Config.CachePurgeInterval).Do(func() {
			if _, err := r.PurgeCache(ctx); err != nil {
				r.logger().Error("cache purge failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule cache purge: %w", err)
		}
	}
	if r.Config.AdvisoryInterval > 0 && r.Hub != nil {
		if _, err := scheduler.Every(r.Config.AdvisoryInterval).Do(func() {
			if _, err := r.BroadcastAdvisories(ctx); err != nil {
				r.logger().Error("advisory broadcast failed", zap.Error(err))
			}
		}); err != nil {
			return fmt.Errorf("schedule advisory broadcast: %w", err)
		}
	}

	r.logger().Info("scheduler started",
		zap.Duration("cache_purge_interval", r.Config.CachePurgeInterval),
		zap.Duration("advisory_interval", r.Config.AdvisoryInterval))
	scheduler.StartAsync()
	<-ctx.Done()
	scheduler.Stop()
	r.logger().Info("scheduler stopped")
	return nil
}
