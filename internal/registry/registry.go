// Package registry owns the ordered session record set.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freemaltson/whiskynights/internal/log"
	"github.com/freemaltson/whiskynights/internal/metrics"
	"github.com/freemaltson/whiskynights/internal/session"
	"github.com/freemaltson/whiskynights/internal/store"
)

// ErrNotFound is returned when an update targets an id with no matching record.
var ErrNotFound = errors.New("session not found")

// Config carries the registry's collaborators and group constants.
type Config struct {
	// Resolver normalizes host names on load and on submission.
	Resolver *session.Resolver
	// RoundSize is the membership count; ordinals roll over past it.
	RoundSize int
	// Now supplies the preview date; defaults to time.Now.
	Now func() time.Time
}

// Registry performs load-mutate-save cycles against the injected store.
// The mutex enforces the single-writer discipline: concurrent mutating
// calls would otherwise race on the full-file overwrite.
type Registry struct {
	mu        sync.Mutex
	store     store.Store
	resolver  *session.Resolver
	roundSize int
	now       func() time.Time
	logger    zerolog.Logger
}

// New builds a registry over the given store.
func New(st store.Store, cfg Config) *Registry {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = session.NewResolver(nil)
	}
	return &Registry{
		store:     st,
		resolver:  resolver,
		roundSize: cfg.RoundSize,
		now:       now,
		logger:    log.WithComponent("registry"),
	}
}

// load reads the state and normalizes every host name, so records entered
// before an alias was known come back canonical.
func (r *Registry) load(ctx context.Context) (store.State, error) {
	st, err := r.store.Load(ctx)
	if err != nil {
		return store.State{}, err
	}
	for i := range st.Sessions {
		st.Sessions[i].Host = r.resolver.Normalize(st.Sessions[i].Host)
	}
	return st, nil
}

func (r *Registry) save(ctx context.Context, st store.State) error {
	if err := r.store.Save(ctx, st); err != nil {
		return err
	}
	metrics.SetSessionsTotal(len(st.Sessions))
	return nil
}

// sortRecords orders records ascending by (round, ordinal); records whose id
// does not decode sort after every valid one.
func sortRecords(records []session.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ri, oi := session.SortKey(records[i].ID)
		rj, oj := session.SortKey(records[j].ID)
		if ri != rj {
			return ri < rj
		}
		return oi < oj
	})
}

// Add stores a new session. The host is normalized and, when the submission
// carries no id, the next round:ordinal slot is allocated over the current
// sorted set.
func (r *Registry) Add(ctx context.Context, rec session.Record) (session.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.load(ctx)
	if err != nil {
		return session.Record{}, fmt.Errorf("add session: %w", err)
	}

	rec.Host = r.resolver.Normalize(rec.Host)
	if rec.ID == "" {
		rec.ID = session.NextID(st.Sessions, r.roundSize).String()
	}
	st.Sessions = append(st.Sessions, rec)
	sortRecords(st.Sessions)

	if err := r.save(ctx, st); err != nil {
		return session.Record{}, fmt.Errorf("add session: %w", err)
	}
	r.logger.Info().
		Str("id", rec.ID).
		Str("host", rec.Host).
		Str("whisky", rec.Whisky).
		Msg("session added")
	return rec, nil
}

// Update applies a partial patch to the record whose rendered id matches
// exactly. A host set by the patch is normalized; other fields overwrite
// as given. Returns ErrNotFound when no record matches.
func (r *Registry) Update(ctx context.Context, id string, patch session.Patch) (session.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.load(ctx)
	if err != nil {
		return session.Record{}, fmt.Errorf("update session: %w", err)
	}

	idx := -1
	for i := range st.Sessions {
		if st.Sessions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return session.Record{}, ErrNotFound
	}

	if patch.Host != nil {
		normalized := r.resolver.Normalize(*patch.Host)
		patch.Host = &normalized
	}
	st.Sessions[idx].Apply(patch)
	updated := st.Sessions[idx]
	sortRecords(st.Sessions)

	if err := r.save(ctx, st); err != nil {
		return session.Record{}, fmt.Errorf("update session: %w", err)
	}
	r.logger.Info().Str("id", id).Msg("session updated")
	return updated, nil
}

// List returns the sessions that carry meaningful data (a whisky or a host),
// in storage order, together with the member roster.
func (r *Registry) List(ctx context.Context) ([]session.Record, []string, error) {
	st, err := r.load(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]session.Record, 0, len(st.Sessions))
	for _, rec := range st.Sessions {
		if rec.Whisky != "" || rec.Host != "" {
			out = append(out, rec)
		}
	}
	return out, st.Members, nil
}

// Sessions returns a copy of every record, including the sparse ones.
func (r *Registry) Sessions(ctx context.Context) ([]session.Record, error) {
	st, err := r.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load sessions: %w", err)
	}
	out := make([]session.Record, len(st.Sessions))
	copy(out, st.Sessions)
	return out, nil
}

// ReplaceSessions overwrites the record set in a single save, preserving the
// member roster. Used by batch enrichment, which mutates records in place
// and persists once at the end.
func (r *Registry) ReplaceSessions(ctx context.Context, records []session.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("replace sessions: %w", err)
	}
	st.Sessions = records
	if err := r.save(ctx, st); err != nil {
		return fmt.Errorf("replace sessions: %w", err)
	}
	return nil
}

// Preview describes the next allocatable session without storing anything.
type Preview struct {
	ID    string   `json:"id"`
	Date  string   `json:"date"`
	Hosts []string `json:"hosts"`
}

// NextPreview computes the next id, today's date and the candidate hosts:
// the static member roster when present, otherwise the distinct normalized
// hosts observed in history, sorted lexicographically.
func (r *Registry) NextPreview(ctx context.Context) (Preview, error) {
	st, err := r.load(ctx)
	if err != nil {
		return Preview{}, fmt.Errorf("next session preview: %w", err)
	}

	hosts := st.Members
	if len(hosts) == 0 {
		seen := make(map[string]struct{})
		for _, rec := range st.Sessions {
			if rec.Host == "" {
				continue
			}
			seen[rec.Host] = struct{}{}
		}
		hosts = make([]string, 0, len(seen))
		for h := range seen {
			hosts = append(hosts, h)
		}
		sort.Strings(hosts)
	}

	return Preview{
		ID:    session.NextID(st.Sessions, r.roundSize).String(),
		Date:  r.now().Format("2006-01-02"),
		Hosts: hosts,
	}, nil
}
