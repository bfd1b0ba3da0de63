package pagination

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for paginated fetches.
var (
	lmPagesFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lmapi_pages_fetched_total",
		Help: "Total pages fetched across all paginated runs",
	})

	lmPaginatedRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lmapi_paginated_runs_total",
		Help: "Total paginated runs by outcome",
	}, []string{"outcome"})
)

// Config holds fetcher configuration.
type Config struct {
	// PageSize is the number of items requested per page.
	PageSize int
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: 950,
	}
}

// PageFetcher fetches one page at the given offset and reports the
// server-side total item count.
type PageFetcher interface {
	FetchPage(ctx context.Context, offset, size int) (items []json.RawMessage, total int, err error)
}

// Fetcher drives the offset loop over a PageFetcher. Requests are issued
// sequentially, one in flight at a time, and the result is all-or-nothing: a
// failure on any page discards every page fetched before it.
type Fetcher struct {
	fetcher PageFetcher
	size    int
}

// NewFetcher creates a new fetcher.
func NewFetcher(fetcher PageFetcher, config Config) *Fetcher {
	if config.PageSize <= 0 {
		config.PageSize = 950
	}

	return &Fetcher{
		fetcher: fetcher,
		size:    config.PageSize,
	}
}

// FetchAll retrieves every page and returns the concatenated items.
//
// The page count is floor(total/size)+1, derived from the total reported by
// the first page; the loop runs exactly that many times with offsets 0,
// size, 2*size, and so on. A total of zero still costs the one request
// already made. The total is assumed stable across pages of the same run; the
// server does not guarantee this and the fetcher does not re-check it.
func (f *Fetcher) FetchAll(ctx context.Context) ([]json.RawMessage, error) {
	start := time.Now()

	items, total, err := f.fetcher.FetchPage(ctx, 0, f.size)
	if err != nil {
		lmPaginatedRunsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch first page: %w", err)
	}
	lmPagesFetchedTotal.Inc()

	pageCount := total/f.size + 1

	log.Debug().
		Int("total", total).
		Int("page_count", pageCount).
		Int("page_size", f.size).
		Msg("Starting paginated fetch")

	all := items
	for batch := 1; batch < pageCount; batch++ {
		offset := batch * f.size

		pageItems, _, err := f.fetcher.FetchPage(ctx, offset, f.size)
		if err != nil {
			// Discard everything fetched so far; partial results are
			// never returned.
			lmPaginatedRunsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}
		lmPagesFetchedTotal.Inc()

		all = append(all, pageItems...)
	}

	lmPaginatedRunsTotal.WithLabelValues("success").Inc()
	log.Info().
		Int("items", len(all)).
		Int("pages", pageCount).
		Dur("duration", time.Since(start)).
		Msg("Paginated fetch complete")

	return all, nil
}
