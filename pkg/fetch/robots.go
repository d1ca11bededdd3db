package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"
)

// RobotsGate checks URLs against each host's robots.txt, caching parsed data
// per host for the lifetime of the process. A missing, erroring, or
// unparseable robots.txt allows everything (standard permissive fallback).
type RobotsGate struct {
	fetcher   *Fetcher
	userAgent string
	cache     map[string]*robotstxt.RobotsData // scheme://host -> parsed data, nil = allow all
	cacheMu   sync.Mutex
	log       *logrus.Entry
}

// NewRobotsGate creates a RobotsGate using the shared retrying fetcher
func NewRobotsGate(fetcher *Fetcher, userAgent string, log *logrus.Logger) *RobotsGate {
	return &RobotsGate{
		fetcher:   fetcher,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
		log:       log.WithField("component", "robots"),
	}
}

// Allowed reports whether the gate's user agent may fetch u
func (g *RobotsGate) Allowed(ctx context.Context, u *url.URL) bool {
	data := g.robotsData(ctx, u)
	if data == nil {
		return true
	}
	return data.TestAgent(u.Path, g.userAgent)
}

// robotsData returns cached robots data for u's host, fetching on first use
func (g *RobotsGate) robotsData(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	g.cacheMu.Lock()
	data, cached := g.cache[key]
	g.cacheMu.Unlock()
	if cached {
		return data
	}

	data = g.fetchRobots(ctx, key+"/robots.txt")

	g.cacheMu.Lock()
	g.cache[key] = data
	g.cacheMu.Unlock()
	return data
}

func (g *RobotsGate) fetchRobots(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	hostLog := g.log.WithField("robots_url", robotsURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		hostLog.Warnf("Failed to build robots.txt request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.fetcher.Do(ctx, req)
	if err != nil {
		if resp != nil {
			drainAndClose(resp)
		}
		hostLog.Debugf("robots.txt unavailable, allowing all: %v", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		hostLog.Warnf("Failed to read robots.txt body: %v", err)
		return nil
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		hostLog.Warnf("Failed to parse robots.txt, allowing all: %v", err)
		return nil
	}

	hostLog.Debug("Cached robots.txt")
	return data
}
