// Package i18n holds the translated strings of the web UI.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

const (
	// DefaultLanguage is the fallback language when no translation is available
	DefaultLanguage = "en"
	// BerneseGermanMessages is a Swiss Dialect spoken in the Canton of Bern
	BerneseGermanMessages = "ch_be"
)

type catalog struct {
	tag      language.Tag
	messages map[string]string
}

var catalogs = map[string]catalog{
	DefaultLanguage:       {tag: language.English, messages: englishMessages},
	BerneseGermanMessages: {tag: language.MustParse("gsw-CH"), messages: berneseGermanMessages},
}

// Localizer renders UI strings in one configured language.
type Localizer struct {
	language string
	catalog  catalog
}

// NewLocalizer creates a localizer for language. Unknown languages render English.
func NewLocalizer(lang string) *Localizer {
	c, ok := catalogs[lang]
	if !ok {
		lang, c = DefaultLanguage, catalogs[DefaultLanguage]
	}
	return &Localizer{language: lang, catalog: c}
}

// T translates a message key, formatting args into it when given. Keys missing
// from the language fall back to English and then to the key itself.
func (l *Localizer) T(key string, args ...interface{}) string {
	message, ok := l.catalog.messages[key]
	if !ok {
		message, ok = catalogs[DefaultLanguage].messages[key]
	}
	if !ok {
		return key
	}

	if len(args) > 0 {
		return fmt.Sprintf(message, args...)
	}
	return message
}

// Language returns the configuration code of the localizer, e.g. "ch_be".
func (l *Localizer) Language() string {
	return l.language
}

// Tag returns the BCP 47 tag for the html lang attribute.
func (l *Localizer) Tag() string {
	return l.catalog.tag.String()
}

// IsSupported reports whether lang has a message catalog.
func IsSupported(lang string) bool {
	_, ok := catalogs[lang]
	return ok
}

// GetSupportedLanguages returns list of supported language codes
func GetSupportedLanguages() []string {
	return []string{DefaultLanguage, BerneseGermanMessages}
}

// getMessages returns the message map for a given language
func getMessages(lang string) map[string]string {
	if c, ok := catalogs[lang]; ok {
		return c.messages
	}
	return englishMessages
}
