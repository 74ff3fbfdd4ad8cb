package core

import (
	"errors"
	"testing"
	"time"
)

func TestYearWindowFor(t *testing.T) {
	tests := []struct {
		name      string
		age       int
		year      int
		wantStart int
		wantEnd   int
	}{
		{"Forty in 2024", 40, 2024, 1997, 2017},
		{"Eighty in 2026", 80, 2026, 1959, 1979},
		{"Newborn", 0, 2024, 2037, 2057},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := time.Date(tt.year, time.June, 1, 0, 0, 0, 0, time.UTC)
			window := YearWindowFor(tt.age, now)
			if window.Start != tt.wantStart || window.End != tt.wantEnd {
				t.Errorf("YearWindowFor(%d, %d) = %+v, expected {%d %d}",
					tt.age, tt.year, window, tt.wantStart, tt.wantEnd)
			}
			if window.End-window.Start != 20 {
				t.Errorf("Window should span 20 years, got %d", window.End-window.Start)
			}
		})
	}
}

func TestNewPreferenceSet(t *testing.T) {
	valid := PreferenceInput{
		SeniorName: " Rosa ",
		Mood:       "",
		Age:        "82",
		Genres:     "swing, jazz",
		Artists:    "Ella Fitzgerald",
		Language:   "English",
	}

	prefs, err := NewPreferenceSet(valid)
	if err != nil {
		t.Fatalf("NewPreferenceSet() unexpected error: %v", err)
	}
	if prefs.SeniorName != "Rosa" {
		t.Errorf("Expected trimmed senior name, got %q", prefs.SeniorName)
	}
	if prefs.Mood != DefaultMood {
		t.Errorf("Expected default mood %q, got %q", DefaultMood, prefs.Mood)
	}
	if prefs.Age != 82 {
		t.Errorf("Expected age 82, got %d", prefs.Age)
	}

	tests := []struct {
		name  string
		edit  func(in *PreferenceInput)
		field string
	}{
		{"Missing name", func(in *PreferenceInput) { in.SeniorName = "  " }, "senior_name"},
		{"Missing age", func(in *PreferenceInput) { in.Age = "" }, "age"},
		{"Non-numeric age", func(in *PreferenceInput) { in.Age = "eighty" }, "age"},
		{"Negative age", func(in *PreferenceInput) { in.Age = "-3" }, "age"},
		{"Missing genres", func(in *PreferenceInput) { in.Genres = "" }, "genres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			_, err := NewPreferenceSet(in)
			var prefErr *PreferenceError
			if !errors.As(err, &prefErr) {
				t.Fatalf("Expected PreferenceError, got %v", err)
			}
			if prefErr.Field != tt.field {
				t.Errorf("Expected field %q, got %q", tt.field, prefErr.Field)
			}
		})
	}
}

func TestPreferenceSetQuery(t *testing.T) {
	prefs := PreferenceSet{Mood: "happy", Age: 40, Genres: "rock", Artists: "Queen", Language: "English"}
	q := prefs.Query(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))

	if q.Window != (YearWindow{Start: 1997, End: 2017}) {
		t.Errorf("Unexpected window %+v", q.Window)
	}
	if q.Genres != "rock" || q.Artists != "Queen" || q.Mood != "happy" || q.Language != "English" {
		t.Errorf("Query did not carry preferences verbatim: %+v", q)
	}
}
