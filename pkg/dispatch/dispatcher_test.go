package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webcrawler-mcp/pkg/config"
	"webcrawler-mcp/pkg/models"
)

func testDispatcher(probe MemoryProbe) *MemoryAdaptiveDispatcher {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	d := NewMemoryAdaptiveDispatcher(config.CrawlConfig{
		MemoryThresholdPercent: 70.0,
		MemoryCheckInterval:    5 * time.Millisecond,
	}, log)
	if probe != nil {
		d.probe = probe
	}
	return d
}

func urlsN(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("http://site/page-%d", i)
	}
	return urls
}

func TestFetchMany_Empty(t *testing.T) {
	d := testDispatcher(nil)
	results := d.FetchMany(context.Background(), nil, 4, nil)
	assert.Nil(t, results)
}

func TestFetchMany_ConcurrencyCeiling(t *testing.T) {
	const ceiling = 3
	var inFlight, peak int64

	d := testDispatcher(func() (float64, bool) { return 0, false })

	fetch := func(ctx context.Context, url string) models.PageResult {
		current := atomic.AddInt64(&inFlight, 1)
		for {
			observed := atomic.LoadInt64(&peak)
			if current <= observed || atomic.CompareAndSwapInt64(&peak, observed, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return models.PageResult{URL: url, Content: "x", Success: true}
	}

	results := d.FetchMany(context.Background(), urlsN(20), ceiling, fetch)

	require.Len(t, results, 20)
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(ceiling),
		"in-flight fetches exceeded the ceiling")
}

func TestFetchMany_ResultsInRequestOrder(t *testing.T) {
	d := testDispatcher(func() (float64, bool) { return 0, false })

	fetch := func(ctx context.Context, url string) models.PageResult {
		return models.PageResult{URL: url, Content: "x", Success: true}
	}

	urls := urlsN(10)
	results := d.FetchMany(context.Background(), urls, 4, fetch)

	require.Len(t, results, len(urls))
	for i, r := range results {
		assert.Equal(t, urls[i], r.URL)
	}
}

func TestFetchMany_PartialFailureIsolation(t *testing.T) {
	d := testDispatcher(nil)

	fetch := func(ctx context.Context, url string) models.PageResult {
		if url == "http://site/bad" {
			return models.PageResult{URL: url, Success: false, Error: "boom"}
		}
		return models.PageResult{URL: url, Content: "fine", Success: true}
	}

	results := d.FetchMany(context.Background(),
		[]string{"http://site/bad", "http://site/good"}, 2, fetch)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.True(t, results[1].Success)
}

func TestFetchMany_MemoryPressureDelaysAdmission(t *testing.T) {
	// Pressure is high for the first few polls, then clears; the batch must
	// still complete once it does
	var polls int64
	probe := func() (float64, bool) {
		if atomic.AddInt64(&polls, 1) < 4 {
			return 95.0, true
		}
		return 10.0, true
	}
	d := testDispatcher(probe)

	var fetched int64
	fetch := func(ctx context.Context, url string) models.PageResult {
		atomic.AddInt64(&fetched, 1)
		return models.PageResult{URL: url, Content: "x", Success: true}
	}

	// Pre-set pressure so admission is gated from the start
	results := func() []models.PageResult {
		done := make(chan []models.PageResult, 1)
		go func() { done <- d.FetchMany(context.Background(), urlsN(5), 2, fetch) }()
		select {
		case r := <-done:
			return r
		case <-time.After(5 * time.Second):
			t.Fatal("batch did not complete after memory pressure cleared")
			return nil
		}
	}()

	require.Len(t, results, 5)
	assert.Equal(t, int64(5), atomic.LoadInt64(&fetched))
}

func TestFetchMany_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Constant pressure keeps admissions gated, so cancellation is the only
	// way out
	d := testDispatcher(func() (float64, bool) { return 99.0, true })
	// Prime the pressure flag by polling once manually
	var pressure atomic.Bool
	pressure.Store(true)

	err := d.admit(ctx, nil, &pressure)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
