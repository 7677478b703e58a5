// Command backfill recomputes GST totals for stored documents and reports
// every document whose saved totals differ from a fresh computation. With
// -apply the corrected totals are written back through the versioned update.
// Paid, cancelled and other terminal documents are only reported unless
// -include-terminal is set.
//
// Usage: go run ./cmd/backfill [-apply] [-include-terminal] [-tenant UUID]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"erpdesk/internal/config"
	"erpdesk/internal/domain"
	"erpdesk/internal/lifecycle"
	"erpdesk/internal/logger"
	"erpdesk/internal/repository/postgres"
	"erpdesk/internal/tax"
)

const batchSize = 100

type options struct {
	apply           bool
	includeTerminal bool
}

func main() {
	var opts options
	flag.BoolVar(&opts.apply, "apply", false, "write corrected totals instead of only reporting drift")
	flag.BoolVar(&opts.includeTerminal, "include-terminal", false, "also rewrite documents in a terminal status")
	tenant := flag.String("tenant", "", "limit the run to one tenant ID")
	flag.Parse()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if err := run(context.Background(), cfg, log, opts, *tenant); err != nil {
		log.Fatal().Err(err).Msg("backfill failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts options, tenant string) error {
	var tenantID *uuid.UUID
	if tenant != "" {
		id, err := uuid.Parse(tenant)
		if err != nil {
			return fmt.Errorf("parsing -tenant: %w", err)
		}
		tenantID = &id
	}

	db, err := postgres.NewDB(ctx, &cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	docRepo := postgres.NewDocumentRepo(db)
	auditRepo := postgres.NewDocumentAuditRepo(db)

	var (
		lastCreated time.Time
		lastID      uuid.UUID
		scanned     int
		drifted     int
		fixed       int
	)

	for {
		var docs []domain.Document
		err := db.SelectContext(ctx, &docs,
			`SELECT * FROM documents
			 WHERE (created_at, id) > ($1, $2)
			   AND ($3::uuid IS NULL OR tenant_id = $3)
			 ORDER BY created_at, id
			 LIMIT $4`, lastCreated, lastID, tenantID, batchSize)
		if err != nil {
			return fmt.Errorf("querying documents after %s: %w", lastID, err)
		}
		if len(docs) == 0 {
			break
		}

		for i := range docs {
			scanned++
			out, err := reconcile(ctx, docRepo, auditRepo, log, &docs[i], opts)
			if err != nil {
				return err
			}
			switch out {
			case outcomeFixed:
				fixed++
				drifted++
			case outcomeDrift:
				drifted++
			}
		}

		last := docs[len(docs)-1]
		lastCreated, lastID = last.CreatedAt, last.ID
		log.Debug().Int("scanned", scanned).Msg("progress")
	}

	log.Info().Int("scanned", scanned).Int("drifted", drifted).Int("fixed", fixed).Bool("apply", opts.apply).Msg("backfill complete")
	return nil
}

type documentUpdater interface {
	Update(ctx context.Context, doc *domain.Document, expectedVersion int64) error
}

type auditWriter interface {
	Create(ctx context.Context, entry *domain.DocumentAuditEntry) error
}

type outcome int

const (
	outcomeClean outcome = iota
	outcomeSkipped
	outcomeDrift
	outcomeFixed
)

// reconcile compares one document's stored totals with a fresh computation
// and writes the correction when opts allow it. Only unexpected update
// failures are returned.
func reconcile(ctx context.Context, docs documentUpdater, audit auditWriter, log zerolog.Logger, doc *domain.Document, opts options) (outcome, error) {
	result, err := tax.ComputeDocumentTotals(doc.LineItems, doc.Discount, doc.SupplyType)
	if err != nil {
		log.Warn().Err(err).Str("document_id", doc.ID.String()).Str("code", doc.Code).Msg("skipping document: totals not computable")
		return outcomeSkipped, nil
	}
	if result.Totals.Equal(doc.Totals) {
		return outcomeClean, nil
	}
	log.Info().
		Str("tenant_id", doc.TenantID.String()).
		Str("code", doc.Code).
		Str("status", string(doc.Status)).
		Str("stored_grand_total", doc.Totals.GrandTotal.StringFixed(2)).
		Str("computed_grand_total", result.Totals.GrandTotal.StringFixed(2)).
		Msg("totals drift")

	if !opts.apply {
		return outcomeDrift, nil
	}
	if lifecycle.IsTerminal(doc) && !opts.includeTerminal {
		log.Info().Str("code", doc.Code).Str("status", string(doc.Status)).Msg("terminal document left unchanged")
		return outcomeDrift, nil
	}
	if err := fix(ctx, docs, audit, log, doc, result); err != nil {
		if errors.Is(err, domain.ErrConcurrentModification) {
			log.Warn().Str("code", doc.Code).Msg("document changed during backfill; rerun to pick it up")
			return outcomeDrift, nil
		}
		return outcomeDrift, err
	}
	return outcomeFixed, nil
}

// fix stores the recomputed totals as a new document version and records it
// in the audit log without a user. Audit failures are logged, not returned.
func fix(ctx context.Context, docs documentUpdater, audit auditWriter, log zerolog.Logger, doc *domain.Document, result *tax.Result) error {
	before := doc.Totals
	expected := doc.Version

	next := doc.Clone()
	next.LineItems = result.Lines
	next.Totals = result.Totals
	next.Version = expected + 1
	next.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	if err := docs.Update(ctx, next, expected); err != nil {
		return fmt.Errorf("updating %s: %w", doc.Code, err)
	}
	*doc = *next

	changes, _ := json.Marshal(map[string]interface{}{
		"reason": "backfill",
		"before": before,
		"after":  doc.Totals,
	})
	if err := audit.Create(ctx, &domain.DocumentAuditEntry{
		ID:         uuid.New(),
		TenantID:   doc.TenantID,
		DocumentID: doc.ID,
		Action:     string(domain.AuditDocumentTotalsRecomputed),
		Changes:    changes,
	}); err != nil {
		log.Warn().Err(err).
			Str("document_id", doc.ID.String()).
			Msg("backfill: failed to write audit entry")
	}
	return nil
}
