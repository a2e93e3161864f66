// Package category maps app identities to categories through a priority
// chain: per-app override, then user-created membership, then built-in
// membership, then the reserved miscellaneous fallback. Categorization is a
// query-time lens over raw sessions; nothing here rewrites tracked history.
package category

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/runnerr0/glimpse/internal/storage"
)

// Resolver owns the in-memory category and override tables, loaded from the
// Store at construction and written through on every mutation. Mutations
// take the exclusive lock; snapshot reads take the shared lock, so a query
// sees either fully-pre-mutation or fully-post-mutation state.
type Resolver struct {
	store storage.Store

	mu         sync.RWMutex
	categories map[string]storage.Category
	overrides  map[string]string
}

// NewResolver loads the category and override tables from the store.
func NewResolver(ctx context.Context, store storage.Store) (*Resolver, error) {
	categories, err := store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	overrides, err := store.ListOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}

	r := &Resolver{
		store:      store,
		categories: make(map[string]storage.Category, len(categories)),
		overrides:  overrides,
	}
	for _, c := range categories {
		r.categories[c.ID] = c
	}

	if _, ok := r.categories[storage.MiscellaneousID]; !ok {
		return nil, fmt.Errorf("store is missing the %s category", storage.MiscellaneousID)
	}

	return r, nil
}

// Snapshot is an immutable view of the resolution state. Resolution against
// a snapshot is a pure function, safe to cache for the span of one
// aggregation query.
type Snapshot struct {
	overrides      map[string]string
	customMembers  map[string]string
	builtinMembers map[string]string
	colors         map[string]string
}

// Snapshot captures the current resolution state under the shared lock.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		overrides:      make(map[string]string, len(r.overrides)),
		customMembers:  map[string]string{},
		builtinMembers: map[string]string{},
		colors:         make(map[string]string, len(r.categories)),
	}
	for app, id := range r.overrides {
		snap.overrides[app] = id
	}

	// Sorted iteration keeps membership resolution deterministic when an
	// app appears in more than one member list.
	ids := make([]string, 0, len(r.categories))
	for id := range r.categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := r.categories[id]
		snap.colors[id] = c.Color
		members := snap.builtinMembers
		if c.IsCustom {
			members = snap.customMembers
		}
		for _, app := range c.MemberApps {
			if _, taken := members[app]; !taken {
				members[app] = id
			}
		}
	}

	return snap
}

// Resolve maps an app key to a category id through the priority chain.
func (s Snapshot) Resolve(appKey string) string {
	app := normalizeAppKey(appKey)
	if id, ok := s.overrides[app]; ok {
		return id
	}
	if id, ok := s.customMembers[app]; ok {
		return id
	}
	if id, ok := s.builtinMembers[app]; ok {
		return id
	}
	return storage.MiscellaneousID
}

// Color returns the display color for a category id, or the miscellaneous
// color if the id is unknown.
func (s Snapshot) Color(categoryID string) string {
	if color, ok := s.colors[categoryID]; ok {
		return color
	}
	return s.colors[storage.MiscellaneousID]
}

// Resolve maps an app key to a category id against the current state.
func (r *Resolver) Resolve(appKey string) string {
	return r.Snapshot().Resolve(appKey)
}

// Categories returns a copy of every category, sorted by id.
func (r *Resolver) Categories() []storage.Category {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]storage.Category, 0, len(r.categories))
	for _, c := range r.categories {
		apps := make([]string, len(c.MemberApps))
		copy(apps, c.MemberApps)
		c.MemberApps = apps
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Overrides returns a copy of the appKey → categoryID override table.
func (r *Resolver) Overrides() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.overrides))
	for app, id := range r.overrides {
		out[app] = id
	}
	return out
}

// CreateCategory derives an id from the display name and persists a new
// user-created category with no members. Fails with ErrDuplicateCategory if
// the derived id collides with any existing category, built-in or custom.
func (r *Resolver) CreateCategory(ctx context.Context, name, description, color string) (string, error) {
	id := Slugify(name)
	if id == "" {
		return "", fmt.Errorf("%w: name %q yields an empty id", ErrValidation, name)
	}
	if err := validateColor(color); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[id]; exists {
		return "", fmt.Errorf("%w: %s", ErrDuplicateCategory, id)
	}

	c := storage.Category{
		ID:          id,
		Description: description,
		Color:       color,
		MemberApps:  []string{},
		IsCustom:    true,
	}
	if err := r.store.CreateCategory(ctx, &c); err != nil {
		return "", fmt.Errorf("persist category: %w", err)
	}

	r.categories[id] = c
	return id, nil
}

// UpdateCategory mutates a category's description and color in place. The
// display name is accepted for interface symmetry but ignored: the id it
// derived is immutable after creation.
func (r *Resolver) UpdateCategory(ctx context.Context, id, _, description, color string) error {
	if err := validateColor(color); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.categories[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}

	if err := r.store.UpdateCategory(ctx, id, description, color); err != nil {
		return fmt.Errorf("persist update: %w", err)
	}

	c.Description = description
	c.Color = color
	r.categories[id] = c
	return nil
}

// DeleteCategory removes a user-created category. Every app currently
// resolving to it through membership or override falls back to
// miscellaneous; no app is left pointing at a nonexistent category.
func (r *Resolver) DeleteCategory(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.categories[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, id)
	}
	if !c.IsCustom {
		return fmt.Errorf("%w: %s", ErrNotDeletable, id)
	}

	if err := r.store.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("persist delete: %w", err)
	}

	delete(r.categories, id)
	for app, categoryID := range r.overrides {
		if categoryID == id {
			delete(r.overrides, app)
		}
	}
	return nil
}

// AssignAppToCategory upserts the per-app override, superseding any default
// membership for that app.
func (r *Resolver) AssignAppToCategory(ctx context.Context, appKey, categoryID string) error {
	app := normalizeAppKey(appKey)
	if app == "" {
		return fmt.Errorf("%w: empty app key", ErrValidation)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.categories[categoryID]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
	}

	if err := r.store.SetOverride(ctx, app, categoryID); err != nil {
		return fmt.Errorf("persist override: %w", err)
	}

	r.overrides[app] = categoryID
	return nil
}
