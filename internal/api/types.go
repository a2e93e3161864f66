package api

// Response shapes consumed by the host application. Field names are part of
// the contract with the presentation layer; keep them stable.

// BreakdownEntry is one category's share of a day.
type BreakdownEntry struct {
	Category string `json:"category"`
	Time     int64  `json:"time"`
	Color    string `json:"color"`
}

// BreakdownResponse answers getDailyCategoryBreakdown.
type BreakdownResponse struct {
	Success bool             `json:"success"`
	Data    []BreakdownEntry `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// TimelineCategory is one category present in a timeline segment.
type TimelineCategory struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TimelineSegment is one rail segment of the grouped timeline.
type TimelineSegment struct {
	SessionLength int64              `json:"session_length"`
	SessionEnd    int64              `json:"session_end"`
	Categories    []TimelineCategory `json:"categories"`
}

// TimelineResponse answers getGroupedCategories.
type TimelineResponse struct {
	Data  []TimelineSegment `json:"data"`
	Error string            `json:"error,omitempty"`
}

// CategoryInfo describes one category for the settings views.
type CategoryInfo struct {
	Description string   `json:"description"`
	Color       string   `json:"color"`
	Apps        []string `json:"apps"`
	IsCustom    bool     `json:"isCustom,omitempty"`
}

// AppCategoriesData pairs the detected app list with the full category set.
type AppCategoriesData struct {
	DetectedApps []string                `json:"detectedApps"`
	Categories   map[string]CategoryInfo `json:"categories"`
}

// AppCategoriesResponse answers getAppCategories.
type AppCategoriesResponse struct {
	Success bool               `json:"success"`
	Data    *AppCategoriesData `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// UserSettingsData holds only user-created state: custom categories and
// per-app overrides.
type UserSettingsData struct {
	CustomCategories     map[string]CategoryInfo `json:"customCategories"`
	AppCategoryOverrides map[string]string       `json:"appCategoryOverrides"`
}

// UserSettingsResponse answers getUserCategorySettings.
type UserSettingsResponse struct {
	Success bool              `json:"success"`
	Data    *UserSettingsData `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// MutationResponse answers every category CRUD operation.
type MutationResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}
