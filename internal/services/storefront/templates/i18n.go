package templates

import (
	"golang.org/x/text/message"

	"github.com/anvistudio/storefront/internal/services/storefront/platform/i18n"
)

// Localizer provides translated strings for storefront components.
type Localizer = i18n.Localizer

// T returns a translated string, or the key itself without a localizer.
func T(loc Localizer, key message.Reference, args ...any) string {
	if loc != nil {
		return loc.Sprintf(key, args...)
	}
	if keyString, ok := key.(string); ok {
		return keyString
	}
	return ""
}
