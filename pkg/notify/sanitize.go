package notify

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	emailPolicyOnce sync.Once
	emailPolicy     *bluemonday.Policy
)

// Sanitize strips anything from markup that mail clients should never see:
// scripts, event handlers, forms and links with unsafe schemes. Inline style
// attributes are kept as written.
func Sanitize(markup string) string {
	trimmed := strings.TrimSpace(markup)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(emailSanitizer().Sanitize(trimmed))
}

func emailSanitizer() *bluemonday.Policy {
	emailPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements(
			"div", "h1", "h2", "p", "span", "strong", "a",
			"table", "thead", "tbody", "tr", "td", "th",
		)
		// no AllowStyles: style attributes pass through untouched
		policy.AllowAttrs("style").Globally()
		policy.AllowAttrs("colspan", "rowspan").OnElements("td", "th")

		policy.RequireParseableURLs(true)
		policy.AllowRelativeURLs(true)
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.AllowAttrs("href").OnElements("a")

		emailPolicy = policy
	})
	return emailPolicy
}
