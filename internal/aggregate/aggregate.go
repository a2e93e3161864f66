// Package aggregate answers the two query shapes the presentation layer
// needs: per-day category totals and merged timeline rail segments. It owns
// no state; every query reads the store and a resolver snapshot, so
// reassigning a category retroactively changes historical views.
package aggregate

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/runnerr0/glimpse/internal/category"
	"github.com/runnerr0/glimpse/internal/storage"
)

// Day is the aggregation window length.
const Day = 24 * time.Hour

// BreakdownEntry is one category's total for a day.
type BreakdownEntry struct {
	CategoryID string
	TotalMs    int64
	Color      string
}

// RailCategory identifies one category present in a rail segment.
type RailCategory struct {
	CategoryID string
	Color      string
}

// RailSegment is a contiguous time block during which the set of occupying
// categories does not change.
type RailSegment struct {
	SegmentEnd time.Time
	DurationMs int64
	Categories []RailCategory
}

// Aggregator computes read-only views over the session log. Safe for
// concurrent use; each query works against one resolver snapshot.
type Aggregator struct {
	store    storage.Store
	resolver *category.Resolver
}

// New creates an aggregator over the store and resolver.
func New(store storage.Store, resolver *category.Resolver) *Aggregator {
	return &Aggregator{store: store, resolver: resolver}
}

// interval is a clipped session contribution with its resolved category.
type interval struct {
	start      time.Time
	end        time.Time
	categoryID string
}

// clippedIntervals loads the sessions intersecting [dayStart, dayStart+24h),
// clips each to the window, and resolves its category against one snapshot.
func (a *Aggregator) clippedIntervals(ctx context.Context, dayStart time.Time) ([]interval, category.Snapshot, error) {
	dayEnd := dayStart.Add(Day)

	sessions, err := a.store.SessionsOverlapping(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, category.Snapshot{}, err
	}

	snap := a.resolver.Snapshot()

	intervals := make([]interval, 0, len(sessions))
	for _, s := range sessions {
		start := s.StartedAt
		if start.Before(dayStart) {
			start = dayStart
		}
		end := s.EndedAt()
		if end.After(dayEnd) {
			end = dayEnd
		}
		if !end.After(start) {
			continue
		}
		intervals = append(intervals, interval{
			start:      start,
			end:        end,
			categoryID: snap.Resolve(s.AppKey),
		})
	}

	return intervals, snap, nil
}

// DailyBreakdown sums clipped session time per category for the day
// starting at dayStart. Entries are sorted by descending total (ties by id)
// and categories with zero total are omitted.
func (a *Aggregator) DailyBreakdown(ctx context.Context, dayStart time.Time) ([]BreakdownEntry, error) {
	intervals, snap, err := a.clippedIntervals(ctx, dayStart)
	if err != nil {
		return nil, err
	}

	totals := map[string]int64{}
	for _, iv := range intervals {
		totals[iv.categoryID] += iv.end.Sub(iv.start).Milliseconds()
	}

	entries := make([]BreakdownEntry, 0, len(totals))
	for id, total := range totals {
		if total == 0 {
			continue
		}
		entries = append(entries, BreakdownEntry{
			CategoryID: id,
			TotalMs:    total,
			Color:      snap.Color(id),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalMs != entries[j].TotalMs {
			return entries[i].TotalMs > entries[j].TotalMs
		}
		return entries[i].CategoryID < entries[j].CategoryID
	})

	return entries, nil
}

// GroupedTimeline sweeps the day chronologically and merges
// adjacent/overlapping intervals whose resolved category sets are identical
// into rail segments. Segments never overlap; gaps are omitted, not
// zero-filled.
func (a *Aggregator) GroupedTimeline(ctx context.Context, dayStart time.Time) ([]RailSegment, error) {
	intervals, snap, err := a.clippedIntervals(ctx, dayStart)
	if err != nil {
		return nil, err
	}
	if len(intervals) == 0 {
		return []RailSegment{}, nil
	}

	// Elementary slices between consecutive boundary points. The set is
	// keyed on the epoch instant, not time.Time: clipped bounds carry the
	// caller's zone while stored times are UTC, and equal instants must
	// collapse to one boundary.
	boundarySet := map[int64]time.Time{}
	for _, iv := range intervals {
		boundarySet[iv.start.UnixNano()] = iv.start
		boundarySet[iv.end.UnixNano()] = iv.end
	}
	boundaries := make([]time.Time, 0, len(boundarySet))
	for _, b := range boundarySet {
		boundaries = append(boundaries, b)
	}
	sort.Slice(boundaries, func(i, j int) bool { return boundaries[i].Before(boundaries[j]) })

	type slice struct {
		start, end time.Time
		key        string   // canonical category-set key
		categories []string // sorted ids
	}

	var slices []slice
	for i := 0; i+1 < len(boundaries); i++ {
		start, end := boundaries[i], boundaries[i+1]

		seen := map[string]struct{}{}
		for _, iv := range intervals {
			if iv.start.Before(end) && iv.end.After(start) {
				seen[iv.categoryID] = struct{}{}
			}
		}
		if len(seen) == 0 {
			continue // gap
		}

		ids := make([]string, 0, len(seen))
		for id := range seen {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		slices = append(slices, slice{
			start:      start,
			end:        end,
			key:        strings.Join(ids, "\x00"),
			categories: ids,
		})
	}

	// Merge adjacent slices with an identical category set.
	segments := []RailSegment{}
	for i := 0; i < len(slices); i++ {
		cur := slices[i]
		for i+1 < len(slices) && slices[i+1].key == cur.key && slices[i+1].start.Equal(cur.end) {
			cur.end = slices[i+1].end
			i++
		}

		categories := make([]RailCategory, len(cur.categories))
		for j, id := range cur.categories {
			categories[j] = RailCategory{CategoryID: id, Color: snap.Color(id)}
		}
		segments = append(segments, RailSegment{
			SegmentEnd: cur.end,
			DurationMs: cur.end.Sub(cur.start).Milliseconds(),
			Categories: categories,
		})
	}

	return segments, nil
}
