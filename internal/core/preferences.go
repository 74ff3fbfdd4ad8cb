package core

import (
	"strconv"
	"strings"
	"time"
)

const (
	// formativeAgeOffset is the age at which listeners start forming lasting music memories
	formativeAgeOffset = 13
	// yearWindowSpan is the number of years covered by a YearWindow
	yearWindowSpan = 20
	// DefaultMood is used when the form leaves the mood empty
	DefaultMood = "calming"
)

// PreferenceInput is the raw preference form as submitted by the browser.
type PreferenceInput struct {
	SeniorName string
	Mood       string
	Age        string
	Genres     string
	Artists    string
	Language   string
}

// NewPreferenceSet validates raw form input. Senior name, age and genres are required.
func NewPreferenceSet(in PreferenceInput) (PreferenceSet, error) {
	seniorName := strings.TrimSpace(in.SeniorName)
	if seniorName == "" {
		return PreferenceSet{}, &PreferenceError{Field: "senior_name", Reason: "required"}
	}

	rawAge := strings.TrimSpace(in.Age)
	if rawAge == "" {
		return PreferenceSet{}, &PreferenceError{Field: "age", Reason: "required"}
	}
	age, err := strconv.Atoi(rawAge)
	if err != nil || age < 0 {
		return PreferenceSet{}, &PreferenceError{Field: "age", Reason: "must be a non-negative whole number"}
	}

	genres := strings.TrimSpace(in.Genres)
	if genres == "" {
		return PreferenceSet{}, &PreferenceError{Field: "genres", Reason: "required"}
	}

	mood := strings.TrimSpace(in.Mood)
	if mood == "" {
		mood = DefaultMood
	}

	return PreferenceSet{
		SeniorName: seniorName,
		Mood:       mood,
		Age:        age,
		Genres:     genres,
		Artists:    strings.TrimSpace(in.Artists),
		Language:   strings.TrimSpace(in.Language),
	}, nil
}

// YearWindowFor derives the release-year window for a listener of the given age.
// The window starts in the year the listener turned thirteen and spans twenty years.
func YearWindowFor(age int, now time.Time) YearWindow {
	start := now.Year() - age + formativeAgeOffset
	return YearWindow{Start: start, End: start + yearWindowSpan}
}

// Query builds the generation query for these preferences.
func (p PreferenceSet) Query(now time.Time) GenerationQuery {
	return GenerationQuery{
		Genres:   p.Genres,
		Artists:  p.Artists,
		Window:   YearWindowFor(p.Age, now),
		Mood:     p.Mood,
		Language: p.Language,
	}
}
