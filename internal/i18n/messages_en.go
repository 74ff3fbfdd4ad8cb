package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Error messages
	"error.generic":                  "Something went wrong. Please try again.",
	"error.auth.required":            "Please log in with Spotify first.",
	"error.auth.expired":             "Your Spotify login has expired. Please log in again.",
	"error.auth.denied":              "Spotify login was cancelled.",
	"error.auth.state_mismatch":      "The login request could not be verified. Please try again.",
	"error.preferences.required":     "Please fill in: %s",
	"error.preferences.age":          "Age must be a whole number.",
	"error.preferences.missing":      "Please fill in the preference form first.",
	"error.generation.empty":         "Couldn't come up with songs right now. Please try again.",
	"error.playlist.empty_selection": "No tracks selected.",
	"error.playlist.no_valid_tracks": "No valid tracks selected. Didn't create playlist.",
	"error.playlist.partial":         "The playlist was created but the songs could not be added.",
	"error.playlist.duplicate":       "This playlist was already created.",
	"error.playlist.not_found":       "Couldn't load the playlist.",
	"error.playlist.remove_failed":   "Couldn't remove the song from the playlist.",
	"error.rate_limited":             "You're going a bit fast. Please wait a minute and try again.",

	// Page texts
	"page.title":           "MusicMem",
	"page.welcome":         "Personal playlists for memory care, built from the songs of your youth.",
	"page.logged_in_as":    "Logged in as %s",
	"page.preferences":     "Listening preferences",
	"page.recommendations": "Suggested songs",
	"page.playlist":        "Playlist",
	"page.empty_playlist":  "This playlist has no songs.",

	// Form prompts
	"prompt.senior_name":   "Name",
	"prompt.age":           "Age",
	"prompt.genres":        "Favourite genres",
	"prompt.artists":       "Favourite artists",
	"prompt.mood":          "Mood",
	"prompt.language":      "Song language",
	"prompt.playlist_name": "Playlist name",
	"prompt.select_songs":  "Select the songs to keep:",

	// Format helpers
	"format.song":      "%s - %s",
	"format.not_found": "%s - %s (not found on Spotify)",

	// Success messages
	"success.playlist_created": "Playlist created: %s",
	"success.track_removed":    "Song removed.",

	// Button texts
	"button.login":           "Log in with Spotify",
	"button.logout":          "Log out",
	"button.submit":          "Find songs",
	"button.create_playlist": "Create playlist",
	"button.remove":          "Remove",
	"button.open_spotify":    "Open in Spotify",
	"button.back":            "Back",
}
