// Package resolver fetches settings records for parsed lookup queries and
// orders them deterministically.
package resolver

import (
	"context"
	"fmt"
	"sort"

	"github.com/camsettings-bot/internal/models"
)

// SettingsStore is the read contract the resolver needs from the settings
// store. Matching is done by the store; ordering and deduplication here.
type SettingsStore interface {
	FindProBySubstring(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error)
	FindRedditByExactKey(ctx context.Context, keys []string) ([]*models.PlayerSettings, error)
	FindTeams(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error)
}

// Resolver resolves lookup queries against the settings store. Records are
// read-only here; an empty result is valid and never an error.
type Resolver struct {
	store SettingsStore
}

// New creates a resolver backed by the given store.
func New(store SettingsStore) *Resolver {
	return &Resolver{store: store}
}

// ResolvePro returns pro-namespace records whose normalized name contains any
// fragment as a substring, each record once, sorted ascending by raw name.
func (r *Resolver) ResolvePro(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	records, err := r.store.FindProBySubstring(ctx, fragments)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve pro players: %w", err)
	}

	records = dedupe(records)
	sort.Slice(records, func(i, j int) bool {
		return records[i].RawName < records[j].RawName
	})
	return records, nil
}

// ResolveReddit returns user-namespace records exactly matching any of the
// normalized "/u/<name>" identities, sorted ascending by raw name.
func (r *Resolver) ResolveReddit(ctx context.Context, keys []string) ([]*models.PlayerSettings, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	records, err := r.store.FindRedditByExactKey(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reddit users: %w", err)
	}

	records = dedupe(records)
	sort.Slice(records, func(i, j int) bool {
		return records[i].RawName < records[j].RawName
	})
	return records, nil
}

// ResolveTeams returns pro-namespace records whose normalized full team name
// contains any fragment, or whose normalized short team label equals one
// exactly, sorted ascending by raw full team name. The dual match supports
// abbreviations and partial full-name fragments in one call.
func (r *Resolver) ResolveTeams(ctx context.Context, fragments []string) ([]*models.PlayerSettings, error) {
	if len(fragments) == 0 {
		return nil, nil
	}

	records, err := r.store.FindTeams(ctx, fragments)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve teams: %w", err)
	}

	records = dedupe(records)
	sort.Slice(records, func(i, j int) bool {
		return records[i].RawFullTeam < records[j].RawFullTeam
	})
	return records, nil
}

// ResolvePlayers resolves a possibly mixed player lookup: pro fragments and
// reddit identities resolve independently, pro collection first. Order
// between the two groups is fixed; each group keeps its own sort.
func (r *Resolver) ResolvePlayers(ctx context.Context, proFragments, redditKeys []string) (pro, reddit []*models.PlayerSettings, err error) {
	pro, err = r.ResolvePro(ctx, proFragments)
	if err != nil {
		return nil, nil, err
	}

	reddit, err = r.ResolveReddit(ctx, redditKeys)
	if err != nil {
		return nil, nil, err
	}

	return pro, reddit, nil
}

// dedupe keeps the first record seen for each normalized name. A record
// matching several fragments is included once.
func dedupe(records []*models.PlayerSettings) []*models.PlayerSettings {
	seen := make(map[string]bool, len(records))
	out := records[:0]
	for _, rec := range records {
		if seen[rec.NormalizedName] {
			continue
		}
		seen[rec.NormalizedName] = true
		out = append(out, rec)
	}
	return out
}
