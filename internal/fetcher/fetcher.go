// Package fetcher retrieves the source page using the Colly collector.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/kasrat/countryscrape/internal/metrics"
)

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetcher performs a single HTTP GET and parses the response body as HTML.
type Fetcher struct {
	cfg    Config
	logger *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{cfg: cfg, logger: logger}
}

// Fetch executes one GET against url using Colly. Transport failures,
// timeouts, and non-2xx statuses all surface as an error; a nil error
// guarantees a parsed document.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	collector := colly.NewCollector()
	collector.IgnoreRobotsTxt = true
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	collector.SetRequestTimeout(timeout)

	var (
		body     []byte
		status   int
		fetchErr error
	)
	start := time.Now()

	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = err
	})

	if err := runVisit(ctx, collector, url, &fetchErr); err != nil {
		return nil, err
	}

	duration := time.Since(start)
	metrics.ObserveFetch(status, duration)

	if fetchErr != nil {
		f.logger.Warn("Fetch failed",
			zap.String("url", url),
			zap.Int("status", status),
			zap.Error(fetchErr),
		)
		return nil, fmt.Errorf("fetch %s: %w", url, fetchErr)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, status)
	}

	f.logger.Info("Fetched source page",
		zap.String("url", url),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", duration),
	)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

// runVisit drives the collector in a goroutine so the surrounding
// context can still cancel the wait.
func runVisit(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil && *fetchErr == nil {
			*fetchErr = err
		}
		return nil
	}
}
