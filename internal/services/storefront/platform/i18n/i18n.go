// Package i18n resolves storefront request languages and prints catalog messages.
package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/i18n/catalog"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"
	// LangCookieName stores the customer's language preference.
	LangCookieName = "sf_lang"
)

var (
	supportedTags = []language.Tag{language.English, language.Hindi}
	matcher       = language.NewMatcher(supportedTags)
)

// Localizer prints catalog messages for one language.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// Supported returns the list of supported language tags.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supportedTags...)
}

// Default returns the default language tag.
func Default() language.Tag {
	return language.English
}

// Catalog returns the registered message bundle.
func Catalog() *catalog.Bundle {
	return catalog.Default()
}

// Printer returns a localizer for tag. Keys missing from the tag's catalog
// fall back to the English copy.
func Printer(tag language.Tag) Localizer {
	normalized, ok := match(tag)
	if !ok {
		normalized = Default()
	}
	printer := fallbackPrinter{primary: message.NewPrinter(normalized)}
	if normalized != Default() {
		printer.fallback = message.NewPrinter(Default())
	}
	return printer
}

// ParseTag parses value and matches it against the supported languages.
func ParseTag(value string) (language.Tag, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return language.Tag{}, false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return language.Tag{}, false
	}
	return match(tag)
}

// ResolveTag determines the best language tag for the request.
// The bool indicates whether the lang query param should be persisted as a cookie.
func ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return Default(), false
	}
	if r.URL != nil {
		if tag, ok := ParseTag(r.URL.Query().Get(LangParam)); ok {
			return tag, true
		}
	}
	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := ParseTag(cookie.Value); ok {
			return tag, false
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if tag, ok := match(tags...); ok {
				return tag, false
			}
		}
	}
	return Default(), false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
}

// ResolveLocalizer returns the request localizer and language and updates
// the language cookie when the request selected one explicitly.
func ResolveLocalizer(w http.ResponseWriter, r *http.Request) (Localizer, string) {
	tag, persist := ResolveTag(r)
	if persist {
		SetLanguageCookie(w, tag)
	}
	return Printer(tag), tag.String()
}

// T prints key with loc, returning the key itself when loc is nil.
func T(loc Localizer, key string, args ...any) string {
	if loc == nil {
		return key
	}
	return loc.Sprintf(key, args...)
}

func match(tags ...language.Tag) (language.Tag, bool) {
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No || index < 0 || index >= len(supportedTags) {
		return language.Tag{}, false
	}
	return supportedTags[index], true
}

type fallbackPrinter struct {
	primary  *message.Printer
	fallback *message.Printer
}

func (p fallbackPrinter) Sprintf(key message.Reference, args ...any) string {
	value := p.primary.Sprintf(key, args...)
	if p.fallback == nil {
		return value
	}
	// x/text prints an unknown key verbatim, with any arguments appended
	// as %!(EXTRA ...).
	if raw, ok := key.(string); ok && (value == raw || strings.HasPrefix(value, raw+"%!(EXTRA")) {
		return p.fallback.Sprintf(key, args...)
	}
	return value
}
