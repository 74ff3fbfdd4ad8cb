package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations
var berneseGermanMessages = map[string]string{
	// Error messages
	"error.generic":                  "Öppis isch schief gloffe. Probier's haut nomau, bitte.",
	"error.auth.required":            "Bitte mäud di zersch mit Spotify a.",
	"error.auth.expired":             "Dis Spotify-Login isch abgloffe. Bitte mäud di nomau a.",
	"error.auth.denied":              "S Spotify-Login isch abbroche worde.",
	"error.auth.state_mismatch":      "D Aamäudig het nid chönne überprüeft wärde. Probier's nomau.",
	"error.preferences.required":     "Bitte usfüue: %s",
	"error.preferences.age":          "S Auter muess e ganzi Zau sii.",
	"error.preferences.missing":      "Bitte füu zersch ds Formular us.",
	"error.generation.empty":         "Ha grad kei Lieder gfunde. Probier's nomau.",
	"error.playlist.empty_selection": "Kei Lieder usgwäut.",
	"error.playlist.no_valid_tracks": "Kei gültigi Lieder usgwäut. D Playliste isch nid erstellt worde.",
	"error.playlist.partial":         "D Playliste isch erstellt, aber d Lieder hei nid chönne hinzuegfüegt wärde.",
	"error.playlist.duplicate":       "Die Playliste gits scho.",
	"error.playlist.not_found":       "Ha d Playliste nid chönne lade.",
	"error.playlist.remove_failed":   "Ha ds Lied nid chönne us der Playliste entfärne.",
	"error.rate_limited":             "Nid so gschwind. Wart bitte e Minute und probier's de nomau.",

	// Page texts
	"page.title":           "MusicMem",
	"page.welcome":         "Persönlechi Playliste für d Betreuig, us de Lieder vo dr Jugend.",
	"page.logged_in_as":    "Aagmäudet als %s",
	"page.preferences":     "Musigwünsch",
	"page.recommendations": "Vorgschlageni Lieder",
	"page.playlist":        "Playliste",
	"page.empty_playlist":  "I dere Playliste hets kei Lieder.",

	// Form prompts
	"prompt.senior_name":   "Name",
	"prompt.age":           "Auter",
	"prompt.genres":        "Lieblingsgenres",
	"prompt.artists":       "Lieblingskünstler",
	"prompt.mood":          "Stimmig",
	"prompt.language":      "Sprach vo de Lieder",
	"prompt.playlist_name": "Name vo dr Playliste",
	"prompt.select_songs":  "Wähl d Lieder us, wo blibe söue:",

	// Format helpers
	"format.song":      "%s - %s",
	"format.not_found": "%s - %s (nid uf Spotify gfunde)",

	// Success messages
	"success.playlist_created": "Playliste erstellt: %s",
	"success.track_removed":    "Lied entfärnt.",

	// Button texts
	"button.login":           "Mit Spotify aamäude",
	"button.logout":          "Abmäude",
	"button.submit":          "Lieder sueche",
	"button.create_playlist": "Playliste erstelle",
	"button.remove":          "Entfärne",
	"button.open_spotify":    "I Spotify öffne",
	"button.back":            "Zrügg",
}
