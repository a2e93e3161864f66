// Package api is the engine's boundary with the host application: typed
// request/response contracts over the store, resolver, and aggregator, plus
// a localhost HTTP adapter. Errors cross this boundary as typed failure
// responses, never as panics.
package api

import (
	"context"
	"time"

	"github.com/runnerr0/glimpse/internal/aggregate"
	"github.com/runnerr0/glimpse/internal/category"
	"github.com/runnerr0/glimpse/internal/storage"
)

// Engine exposes the engine's query and mutation surface.
type Engine struct {
	store    storage.Store
	resolver *category.Resolver
	agg      *aggregate.Aggregator
}

// NewEngine creates the API facade.
func NewEngine(store storage.Store, resolver *category.Resolver, agg *aggregate.Aggregator) *Engine {
	return &Engine{store: store, resolver: resolver, agg: agg}
}

// defaultDayStart is local midnight of the current day, used when the
// caller omits the day argument.
func defaultDayStart() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// GetDailyCategoryBreakdown returns per-category totals for the day
// starting at dayStartMs (epoch milliseconds). A nil dayStartMs means the
// current local day.
func (e *Engine) GetDailyCategoryBreakdown(ctx context.Context, dayStartMs *int64) BreakdownResponse {
	dayStart := defaultDayStart()
	if dayStartMs != nil {
		dayStart = time.UnixMilli(*dayStartMs)
	}

	entries, err := e.agg.DailyBreakdown(ctx, dayStart)
	if err != nil {
		return BreakdownResponse{Success: false, Error: err.Error()}
	}

	data := make([]BreakdownEntry, len(entries))
	for i, entry := range entries {
		data[i] = BreakdownEntry{
			Category: entry.CategoryID,
			Time:     entry.TotalMs,
			Color:    entry.Color,
		}
	}
	return BreakdownResponse{Success: true, Data: data}
}

// GetGroupedCategories returns the merged timeline rail for the day
// starting at dayStartMs.
func (e *Engine) GetGroupedCategories(ctx context.Context, dayStartMs int64) TimelineResponse {
	segments, err := e.agg.GroupedTimeline(ctx, time.UnixMilli(dayStartMs))
	if err != nil {
		return TimelineResponse{Data: []TimelineSegment{}, Error: err.Error()}
	}

	data := make([]TimelineSegment, len(segments))
	for i, seg := range segments {
		categories := make([]TimelineCategory, len(seg.Categories))
		for j, c := range seg.Categories {
			categories[j] = TimelineCategory{Name: c.CategoryID, Color: c.Color}
		}
		data[i] = TimelineSegment{
			SessionLength: seg.DurationMs,
			SessionEnd:    seg.SegmentEnd.UnixMilli(),
			Categories:    categories,
		}
	}
	return TimelineResponse{Data: data}
}

func categoryInfo(c storage.Category) CategoryInfo {
	apps := c.MemberApps
	if apps == nil {
		apps = []string{}
	}
	return CategoryInfo{
		Description: c.Description,
		Color:       c.Color,
		Apps:        apps,
		IsCustom:    c.IsCustom,
	}
}

// GetAppCategories returns every detected app plus the full category set.
func (e *Engine) GetAppCategories(ctx context.Context) AppCategoriesResponse {
	apps, err := e.store.DetectedApps(ctx)
	if err != nil {
		return AppCategoriesResponse{Success: false, Error: err.Error()}
	}

	categories := map[string]CategoryInfo{}
	for _, c := range e.resolver.Categories() {
		categories[c.ID] = categoryInfo(c)
	}

	return AppCategoriesResponse{
		Success: true,
		Data: &AppCategoriesData{
			DetectedApps: apps,
			Categories:   categories,
		},
	}
}

// GetUserCategorySettings returns the user-created categories and the
// override table.
func (e *Engine) GetUserCategorySettings(_ context.Context) UserSettingsResponse {
	custom := map[string]CategoryInfo{}
	for _, c := range e.resolver.Categories() {
		if c.IsCustom {
			custom[c.ID] = categoryInfo(c)
		}
	}

	return UserSettingsResponse{
		Success: true,
		Data: &UserSettingsData{
			CustomCategories:     custom,
			AppCategoryOverrides: e.resolver.Overrides(),
		},
	}
}

// The mutation methods return the resolver's error alongside the response
// so transports can map the sentinel (duplicate, unknown, not deletable,
// validation) onto their own status vocabulary.

// CreateCustomCategory creates a user category and reports its derived id.
func (e *Engine) CreateCustomCategory(ctx context.Context, name, description, color string) (MutationResponse, error) {
	id, err := e.resolver.CreateCategory(ctx, name, description, color)
	if err != nil {
		return MutationResponse{Success: false, Error: err.Error()}, err
	}
	return MutationResponse{Success: true, ID: id}, nil
}

// UpdateCustomCategory updates a category's description and color.
func (e *Engine) UpdateCustomCategory(ctx context.Context, id, name, description, color string) (MutationResponse, error) {
	if err := e.resolver.UpdateCategory(ctx, id, name, description, color); err != nil {
		return MutationResponse{Success: false, Error: err.Error()}, err
	}
	return MutationResponse{Success: true}, nil
}

// DeleteCustomCategory removes a user category; apps pointing at it fall
// back to miscellaneous.
func (e *Engine) DeleteCustomCategory(ctx context.Context, id string) (MutationResponse, error) {
	if err := e.resolver.DeleteCategory(ctx, id); err != nil {
		return MutationResponse{Success: false, Error: err.Error()}, err
	}
	return MutationResponse{Success: true}, nil
}

// AssignAppToCategory upserts a per-app override.
func (e *Engine) AssignAppToCategory(ctx context.Context, appKey, categoryID string) (MutationResponse, error) {
	if err := e.resolver.AssignAppToCategory(ctx, appKey, categoryID); err != nil {
		return MutationResponse{Success: false, Error: err.Error()}, err
	}
	return MutationResponse{Success: true}, nil
}
