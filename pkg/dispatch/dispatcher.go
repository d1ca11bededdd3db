package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"webcrawler-mcp/pkg/config"
	"webcrawler-mcp/pkg/models"
)

// MemoryProbe reports current system memory utilization as a percentage.
// ok is false when utilization cannot be determined on this platform, in
// which case throttling is skipped.
type MemoryProbe func() (usedPercent float64, ok bool)

// MemoryAdaptiveDispatcher schedules batch fetches under two limits: a fixed
// in-flight ceiling and an admission gate that pauses new fetches while
// system memory utilization sits above the configured threshold. It owns no
// crawl state and never retries; each URL's result slot mirrors its position
// in the request, so batch output order equals request order.
type MemoryAdaptiveDispatcher struct {
	thresholdPercent float64
	checkInterval    time.Duration
	probe            MemoryProbe
	log              *logrus.Entry
}

// NewMemoryAdaptiveDispatcher creates a dispatcher using the platform
// memory probe
func NewMemoryAdaptiveDispatcher(cfg config.CrawlConfig, log *logrus.Logger) *MemoryAdaptiveDispatcher {
	return &MemoryAdaptiveDispatcher{
		thresholdPercent: cfg.MemoryThresholdPercent,
		checkInterval:    cfg.MemoryCheckInterval,
		probe:            readMemoryUsedPercent,
		log:              log.WithField("component", "dispatcher"),
	}
}

// FetchMany fetches every URL in the batch, at most maxConcurrent in flight
// at once. Per-URL failures are reported inside the PageResult; one URL's
// failure never blocks or drops another's result. The call returns once every
// URL has either completed or been refused admission by context cancellation.
func (d *MemoryAdaptiveDispatcher) FetchMany(ctx context.Context, urls []string, maxConcurrent int, fetch func(ctx context.Context, url string) models.PageResult) []models.PageResult {
	if len(urls) == 0 {
		return nil
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	sem := semaphore.NewWeighted(int64(maxConcurrent))
	results := make([]models.PageResult, len(urls))

	var pressure atomic.Bool
	monitorCtx, stopMonitor := context.WithCancel(ctx)
	defer stopMonitor()
	go d.monitorMemory(monitorCtx, &pressure)

	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(slot int, target string) {
			defer wg.Done()

			if err := d.admit(ctx, sem, &pressure); err != nil {
				results[slot] = models.PageResult{URL: target, Success: false, Error: err.Error()}
				return
			}
			defer sem.Release(1)

			results[slot] = fetch(ctx, target)
		}(i, u)
	}
	wg.Wait()

	return results
}

// admit blocks until memory utilization is below the threshold and a
// concurrency permit is available, or the context is cancelled
func (d *MemoryAdaptiveDispatcher) admit(ctx context.Context, sem *semaphore.Weighted, pressure *atomic.Bool) error {
	for pressure.Load() {
		select {
		case <-time.After(d.checkInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return sem.Acquire(ctx, 1)
}

// monitorMemory polls utilization on the configured interval for the
// lifetime of one batch, flipping the shared pressure flag on transitions
func (d *MemoryAdaptiveDispatcher) monitorMemory(ctx context.Context, pressure *atomic.Bool) {
	ticker := time.NewTicker(d.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			used, ok := d.probe()
			if !ok {
				continue
			}
			over := used >= d.thresholdPercent
			if pressure.Swap(over) != over {
				if over {
					d.log.WithFields(logrus.Fields{
						"used_percent":      used,
						"threshold_percent": d.thresholdPercent,
					}).Warn("Memory pressure high, pausing new fetch admissions")
				} else {
					d.log.WithField("used_percent", used).Info("Memory pressure cleared, resuming admissions")
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
