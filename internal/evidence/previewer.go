package evidence

import (
	"context"
	"errors"
	"fmt"

	"skillxintell/internal/config"
	"skillxintell/internal/pkg/logger"
	"skillxintell/internal/pkg/metrics"

	"github.com/google/uuid"
)

// TitleStore persists the fetched title on a verification request.
type TitleStore interface {
	SetEvidenceTitle(ctx context.Context, id uuid.UUID, title string) error
}

// Previewer fetches evidence pages in the background and stores their title
// on the owning request. The fallback fetcher runs only when the primary one
// finds no title.
type Previewer struct {
	pool     *WorkerPool
	primary  Fetcher
	fallback Fetcher
	store    TitleStore
	metrics  *metrics.Metrics
	logger   logger.Logger
}

func NewPreviewer(cfg config.EvidenceConfig, store TitleStore, m *metrics.Metrics, log logger.Logger) *Previewer {
	if !cfg.PreviewEnabled {
		return nil
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	pool := NewWorkerPool(workers, workers*32)
	pool.SetRateLimit(4)

	p := &Previewer{
		pool:    pool,
		primary: CollyFetcher{Timeout: cfg.FetchTimeout},
		store:   store,
		metrics: m,
		logger:  log,
	}
	if cfg.Headless {
		p.fallback = HeadlessFetcher{Timeout: cfg.FetchTimeout}
	}
	return p
}

// Start runs the workers until ctx is done or Close is called.
func (p *Previewer) Start(ctx context.Context) {
	if p == nil {
		return
	}
	results := p.pool.Run(ctx)
	go func() {
		for res := range results {
			if res.Err != nil && p.logger != nil {
				p.logger.Warn("evidence preview failed", "err", res.Err)
			}
		}
	}()
}

func (p *Previewer) Close() {
	if p == nil {
		return
	}
	p.pool.Close()
}

// Enqueue schedules a preview for requestID. It never blocks; a full queue
// drops the preview.
func (p *Previewer) Enqueue(requestID uuid.UUID, rawURL string) bool {
	if p == nil {
		return false
	}
	if _, err := ValidateURL(rawURL); err != nil {
		return false
	}
	ok := p.pool.TrySubmit(func(ctx context.Context) error {
		return p.process(ctx, requestID, rawURL)
	})
	if !ok && p.logger != nil {
		p.logger.Warn("evidence preview queue full, dropping", "request_id", requestID)
	}
	return ok
}

func (p *Previewer) process(ctx context.Context, requestID uuid.UUID, rawURL string) error {
	preview, err := p.fetch(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("request %s: %w", requestID, err)
	}
	if err := p.store.SetEvidenceTitle(ctx, requestID, preview.Title); err != nil {
		return fmt.Errorf("request %s: store title: %w", requestID, err)
	}
	if p.logger != nil {
		p.logger.Debug("evidence preview stored", "request_id", requestID, "title", preview.Title)
	}
	return nil
}

func (p *Previewer) fetch(ctx context.Context, rawURL string) (Preview, error) {
	preview, err := p.primary.Fetch(ctx, rawURL)
	p.metrics.EvidencePreview(p.primary.Name(), err == nil)
	if err == nil {
		return preview, nil
	}
	if p.fallback == nil || !errors.Is(err, ErrNoTitle) {
		return Preview{}, err
	}

	preview, err = p.fallback.Fetch(ctx, rawURL)
	p.metrics.EvidencePreview(p.fallback.Name(), err == nil)
	return preview, err
}
