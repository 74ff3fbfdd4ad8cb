package http

import (
	"html/template"

	"musicmem/internal/i18n"
)

const layoutHTML = `{{define "layout"}}<!DOCTYPE html>
<html lang="{{lang}}">
<head>
    <meta charset="utf-8">
    <title>{{t "page.title"}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; max-width: 720px; }
        .header { color: #333; }
        .error { color: #b00020; }
        .notice { color: #1b5e20; }
        .missing { color: #888; }
        label { display: block; margin-top: 10px; }
        li { margin: 6px 0; }
    </style>
</head>
<body>
    <h1 class="header"><a href="/">{{t "page.title"}}</a></h1>
    {{if .User}}<p>{{t "page.logged_in_as" .User}} · <a href="/logout">{{t "button.logout"}}</a></p>{{end}}
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    {{if .Notice}}<p class="notice">{{.Notice}}</p>{{end}}
    {{template "content" .}}
</body>
</html>{{end}}`

const homeHTML = `{{define "content"}}
    <p>{{t "page.welcome"}}</p>
    {{if .User}}
    <p><a href="/preferences">{{t "page.preferences"}}</a></p>
    {{if .PlaylistID}}<p><a href="/playlists/{{.PlaylistID}}">{{t "page.playlist"}}</a></p>{{end}}
    {{else}}
    <p><a href="/login">{{t "button.login"}}</a></p>
    {{end}}
{{end}}`

const preferencesHTML = `{{define "content"}}
    <h2>{{t "page.preferences"}}</h2>
    <form method="post" action="/preferences">
        <label>{{t "prompt.senior_name"}} <input type="text" name="senior_name" value="{{.Form.SeniorName}}" required></label>
        <label>{{t "prompt.age"}} <input type="number" name="age" min="0" value="{{.Form.Age}}" required></label>
        <label>{{t "prompt.genres"}} <input type="text" name="genres" value="{{.Form.Genres}}" required></label>
        <label>{{t "prompt.artists"}} <input type="text" name="artists" value="{{.Form.Artists}}"></label>
        <label>{{t "prompt.mood"}} <input type="text" name="mood" value="{{.Form.Mood}}"></label>
        <label>{{t "prompt.language"}} <input type="text" name="language" value="{{.Form.Language}}"></label>
        <p><button type="submit">{{t "button.submit"}}</button></p>
    </form>
{{end}}`

const recommendationsHTML = `{{define "content"}}
    <h2>{{t "page.recommendations"}}</h2>
    {{if .Tracks}}
    <form method="post" action="/recommendations">
        <p>{{t "prompt.select_songs"}}</p>
        <ul>
        {{range .Tracks}}
            {{if .Found}}
            <li>
                <label><input type="checkbox" name="track_id" value="{{.TrackID}}" checked> {{t "format.song" .Song .Artist}}</label>
                {{if .Snippet}}<audio controls preload="none" src="{{.Snippet}}"></audio>{{end}}
            </li>
            {{else}}
            <li class="missing">{{t "format.not_found" .Song .Artist}}</li>
            {{end}}
        {{end}}
        </ul>
        <label>{{t "prompt.playlist_name"}} <input type="text" name="playlist_name"></label>
        <p><button type="submit">{{t "button.create_playlist"}}</button></p>
    </form>
    {{end}}
    <p><a href="/preferences">{{t "button.back"}}</a></p>
{{end}}`

const playlistHTML = `{{define "content"}}
    <h2>{{t "page.playlist"}}: {{.Playlist.Name}}</h2>
    {{if .Playlist.URL}}<p><a href="{{.Playlist.URL}}">{{t "button.open_spotify"}}</a></p>{{end}}
    {{if .Playlist.Tracks}}
    <ul>
    {{range .Playlist.Tracks}}
        <li>
            <form method="post" action="/playlists/{{$.Playlist.ID}}">
                {{t "format.song" .Title .Artist}}
                <input type="hidden" name="track_id" value="{{.ID}}">
                <button type="submit">{{t "button.remove"}}</button>
            </form>
        </li>
    {{end}}
    </ul>
    {{else}}
    <p>{{t "page.empty_playlist"}}</p>
    {{end}}
    <p><a href="/preferences">{{t "button.back"}}</a></p>
{{end}}`

const messageHTML = `{{define "content"}}
    <p><a href="{{if .BackURL}}{{.BackURL}}{{else}}/{{end}}">{{t "button.back"}}</a></p>
{{end}}`

const (
	pageHome            = "home"
	pagePreferences     = "preferences"
	pageRecommendations = "recommendations"
	pagePlaylist        = "playlist"
	pageMessage         = "message"
)

// parseTemplates builds one template set per page, each sharing the layout.
func parseTemplates(localizer *i18n.Localizer) map[string]*template.Template {
	base := template.Must(template.New("layout").
		Funcs(template.FuncMap{"t": localizer.T, "lang": localizer.Tag}).
		Parse(layoutHTML))

	pages := map[string]string{
		pageHome:            homeHTML,
		pagePreferences:     preferencesHTML,
		pageRecommendations: recommendationsHTML,
		pagePlaylist:        playlistHTML,
		pageMessage:         messageHTML,
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, src := range pages {
		templates[name] = template.Must(template.Must(base.Clone()).Parse(src))
	}
	return templates
}
