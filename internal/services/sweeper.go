// Package services – Sweeper
//
// This file implements the expired-coupon sweeper. Instead of deleting
// expired rows as a side effect of unrelated read requests, the sweeper runs
// on its own timer; list queries additionally exclude expired rows by
// predicate, so nothing expired surfaces between runs.
package services

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/couponhub/go-coupon-backend/internal/repo"
)

// sweptCoupons counts coupon rows removed by the sweeper since process start.
var sweptCoupons = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "coupons_swept_total",
	Help: "Total number of expired coupons removed by the sweeper.",
})

func init() {
	prometheus.MustRegister(sweptCoupons)
}

// Sweeper periodically removes coupons whose validity date has passed.
// Sweeping is idempotent: a run over an already-clean table removes nothing.
type Sweeper struct {
	// DB is the GORM handle used for deletions.
	DB *gorm.DB
	// Interval is the pause between runs. Values <= 0 default to one hour.
	Interval time.Duration
}

// SweepOnce deletes every coupon expired as of now and returns the number of
// rows removed.
func (s *Sweeper) SweepOnce(ctx context.Context, now time.Time) (int64, error) {
	removed, err := repo.DeleteExpiredCoupons(ctx, s.DB, dayStart(now))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		sweptCoupons.Add(float64(removed))
		log.Info().Int64("removed", removed).Msg("swept expired coupons")
	}
	return removed, nil
}

// Run sweeps immediately, then on every tick until the context is canceled.
// Errors are logged and do not stop the loop.
func (s *Sweeper) Run(ctx context.Context) {
	interval := s.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	if _, err := s.SweepOnce(ctx, time.Now()); err != nil {
		log.Error().Err(err).Msg("coupon sweep failed")
	}

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if _, err := s.SweepOnce(ctx, now); err != nil {
				log.Error().Err(err).Msg("coupon sweep failed")
			}
		}
	}
}
