// Package enrich fills missing product metadata on session records from an
// external catalog lookup, without clobbering data the group entered by hand.
package enrich

import (
	"context"

	"github.com/freemaltson/whiskynights/internal/log"
	"github.com/freemaltson/whiskynights/internal/metrics"
	"github.com/freemaltson/whiskynights/internal/session"
)

// Status of a single reconciliation.
type Status string

const (
	StatusEnriched Status = "enriched"
	StatusSkipped  Status = "skipped"
	StatusFailed   Status = "failed"
)

// LookupResult is the product metadata an external lookup can supply.
type LookupResult struct {
	DMURL    string
	Price    *float64
	ImageURL string
}

// LookupFunc queries the external catalog for a whisky name. A nil result
// with a nil error means the catalog had no match.
type LookupFunc func(ctx context.Context, query string) (*LookupResult, error)

// RecordStore is the slice of the registry that batch enrichment needs:
// read every record, write them all back once.
type RecordStore interface {
	Sessions(ctx context.Context) ([]session.Record, error)
	ReplaceSessions(ctx context.Context, records []session.Record) error
}

// Summary aggregates a batch run.
type Summary struct {
	Enriched int `json:"enriched"`
	Failed   int `json:"failed"`
}

// ReconcileOne applies one lookup to one record under the merge policy:
// image_url and rrp are filled only when currently empty, while dm_url is
// refreshed whenever the lookup supplies one. Records without a whisky name
// and records already carrying all three fields are skipped without a
// lookup. A lookup miss or error leaves the record untouched.
func ReconcileOne(ctx context.Context, rec *session.Record, lookup LookupFunc) Status {
	if rec.Whisky == "" {
		return StatusSkipped
	}
	if rec.ImageURL != "" && rec.RRP != nil && rec.DMURL != "" {
		return StatusSkipped
	}

	result, err := lookup(ctx, rec.Whisky)
	if err != nil {
		logger := log.WithComponentFromContext(ctx, "enrich")
		logger.Warn().
			Err(err).
			Str("id", rec.ID).
			Str("whisky", rec.Whisky).
			Msg("catalog lookup failed")
		return StatusFailed
	}
	if result == nil {
		return StatusFailed
	}

	if rec.ImageURL == "" && result.ImageURL != "" {
		rec.ImageURL = result.ImageURL
	}
	if rec.RRP == nil && result.Price != nil {
		v := *result.Price
		rec.RRP = &v
	}
	if result.DMURL != "" {
		rec.DMURL = result.DMURL
	}
	return StatusEnriched
}

// ReconcileAll runs ReconcileOne over every record in registry order and
// persists the registry once at the end. Lookup failures are soft: they are
// counted and the batch carries on.
func ReconcileAll(ctx context.Context, store RecordStore, lookup LookupFunc) (Summary, error) {
	records, err := store.Sessions(ctx)
	if err != nil {
		return Summary{}, err
	}

	var summary Summary
	for i := range records {
		status := ReconcileOne(ctx, &records[i], lookup)
		metrics.RecordEnrichment(string(status))
		switch status {
		case StatusEnriched:
			summary.Enriched++
		case StatusFailed:
			summary.Failed++
		}
	}

	if err := store.ReplaceSessions(ctx, records); err != nil {
		return Summary{}, err
	}
	logger := log.WithComponentFromContext(ctx, "enrich")
	logger.Info().
		Int("enriched", summary.Enriched).
		Int("failed", summary.Failed).
		Msg("batch enrichment complete")
	return summary, nil
}
