package render

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	messagePolicyOnce sync.Once
	messagePolicy     *bluemonday.Policy

	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// sanitizeMessage strips every tag from an error message. Messages can come
// from server payloads, so none of their markup is trusted.
func sanitizeMessage(raw string) string {
	messagePolicyOnce.Do(func() {
		messagePolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(messagePolicy.Sanitize(raw))
}

// sanitizeHelp keeps inline formatting and links in help text.
func sanitizeHelp(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	helpPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "code", "br")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		helpPolicy = policy
	})
	return strings.TrimSpace(helpPolicy.Sanitize(trimmed))
}
