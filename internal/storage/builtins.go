package storage

// MiscellaneousID is the reserved fallback category. Apps that match no
// override and no membership list resolve here.
const MiscellaneousID = "miscellaneous"

// BuiltinCategories returns the category catalog shipped with Glimpse.
// These are seeded by the initial migration, are not deletable, and their
// member lists act as the lowest-priority categorization signal.
func BuiltinCategories() []Category {
	return []Category{
		{
			ID:          "browsing",
			Description: "Web browsers",
			Color:       "#4A90D9",
			MemberApps: []string{
				"chrome", "google chrome", "firefox", "safari",
				"msedge", "microsoft edge", "brave", "opera", "arc", "vivaldi",
			},
		},
		{
			ID:          "development",
			Description: "Code editors, IDEs, and terminals",
			Color:       "#2ECC71",
			MemberApps: []string{
				"code", "visual studio code", "goland", "intellij idea",
				"pycharm", "sublime text", "vim", "neovim", "emacs",
				"xcode", "terminal", "iterm2", "alacritty", "kitty", "wezterm",
			},
		},
		{
			ID:          "communication",
			Description: "Chat and video calls",
			Color:       "#9B59B6",
			MemberApps: []string{
				"slack", "discord", "microsoft teams", "zoom",
				"telegram", "signal", "whatsapp", "messages",
			},
		},
		{
			ID:          "email",
			Description: "Email clients",
			Color:       "#E67E22",
			MemberApps: []string{
				"outlook", "thunderbird", "mail", "airmail", "spark",
			},
		},
		{
			ID:          "media",
			Description: "Music and video",
			Color:       "#E74C3C",
			MemberApps: []string{
				"spotify", "vlc", "music", "youtube music", "mpv", "plex",
			},
		},
		{
			ID:          "productivity",
			Description: "Documents, notes, and design",
			Color:       "#F1C40F",
			MemberApps: []string{
				"notion", "obsidian", "excel", "word", "powerpoint",
				"figma", "pages", "numbers", "keynote", "libreoffice",
			},
		},
		{
			ID:          "gaming",
			Description: "Games and launchers",
			Color:       "#1ABC9C",
			MemberApps: []string{
				"steam", "epic games launcher", "battle.net", "minecraft",
			},
		},
		{
			ID:          MiscellaneousID,
			Description: "Everything not otherwise categorized",
			Color:       "#95A5A6",
			MemberApps:  []string{},
		},
	}
}
