package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"erpdesk/internal/domain"
	"erpdesk/internal/lifecycle"
	"erpdesk/internal/port"
)

// ExpiryWorkerConfig holds settings for the expiry worker.
type ExpiryWorkerConfig struct {
	PollInterval time.Duration
	BatchSize    int
	Concurrency  int
}

// ExpiryWorker moves quotations and e-way bills whose validity has ended to
// expired, acting as the system actor.
type ExpiryWorker struct {
	docRepo    port.DocumentRepository
	docService DocumentService
	cfg        ExpiryWorkerConfig
	now        func() time.Time
	log        zerolog.Logger
	wg         sync.WaitGroup
}

// NewExpiryWorker creates a new ExpiryWorker.
func NewExpiryWorker(docRepo port.DocumentRepository, docService DocumentService, cfg ExpiryWorkerConfig, log zerolog.Logger) *ExpiryWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &ExpiryWorker{
		docRepo:    docRepo,
		docService: docService,
		cfg:        cfg,
		now:        time.Now,
		log:        log,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight expirations have finished.
func (w *ExpiryWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	w.log.Info().
		Dur("poll", w.cfg.PollInterval).
		Int("concurrency", w.cfg.Concurrency).
		Msg("expiryWorker: started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("expiryWorker: shutting down, waiting for in-flight expirations")
			w.wg.Wait()
			w.log.Info().Msg("expiryWorker: shutdown complete")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
				w.log.Error().Err(err).Msg("expiryWorker: sweep failed")
			}
		}
	}
}

// RunOnce expires one batch of documents and returns how many moved.
func (w *ExpiryWorker) RunOnce(ctx context.Context) (int, error) {
	docs, err := w.docRepo.ListExpirable(ctx, w.now().UTC(), w.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	sem := make(chan struct{}, w.cfg.Concurrency)
	var (
		mu      sync.Mutex
		expired int
	)
	for i := range docs {
		doc := docs[i]

		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// In-flight expirations finish even during shutdown.
			expCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			version := doc.Version
			_, err := w.docService.Transition(expCtx, lifecycle.SystemActor(doc.TenantID), doc.ID, TransitionInput{
				Target:          domain.StatusExpired,
				Comment:         "validity ended",
				ExpectedVersion: &version,
			})
			if err != nil {
				// A concurrent edit wins; the next sweep sees the fresh row.
				if !errors.Is(err, domain.ErrConcurrentModification) && !errors.Is(err, domain.ErrInvalidTransition) {
					w.log.Warn().Err(err).Str("document_id", doc.ID.String()).Msg("expiryWorker: expire failed")
				}
				return
			}
			mu.Lock()
			expired++
			mu.Unlock()
		}()
	}
	w.wg.Wait()

	if expired > 0 {
		w.log.Info().Int("count", expired).Msg("expiryWorker: documents expired")
	}
	return expired, nil
}
