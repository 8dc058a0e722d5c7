package utils

import (
	"regexp"
	"strings"
)

// Strip patterns applied to every free-text field before validation.
var (
	reScriptBlock   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>`)
	reScriptOpen    = regexp.MustCompile(`(?i)<script[^>]*>`)
	reEventHandler  = regexp.MustCompile(`(?i)\bon\w+\s*=\s*("[^"]*"|'[^']*'|[^\s>]+)`)
	reTag           = regexp.MustCompile(`<[^>]*>`)
	reJavascriptURI = regexp.MustCompile(`(?i)javascript\s*:`)
	reDataURI       = regexp.MustCompile(`(?i)data\s*:\s*[a-z]+/[a-z0-9.+-]+[;,]`)
)

// Residual signatures scanned after sanitization. Any match rejects the
// whole submission.
var maliciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)<\s*(iframe|object|embed)\b`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon\w+\s*=`),
	regexp.MustCompile(`(?i)%3C\s*script|&lt;\s*script|&#x3c;\s*script`),
	regexp.MustCompile(`(?i)\bunion\b[\s(]+select\b`),
	regexp.MustCompile(`(?i)\binsert\s+into\b`),
	regexp.MustCompile(`(?i)\bdrop\s+(table|database)\b`),
	regexp.MustCompile(`(?i)\bdelete\s+from\b`),
	regexp.MustCompile(`(?i)'\s*(or|and)\s+'?\d+'?\s*=\s*'?\d+`),
	regexp.MustCompile(`(?i)'\s*;\s*(drop|delete|insert|update)\b`),
	regexp.MustCompile(`(?i)(%27|\\x27)\s*(or|and)\b`),
}

// SanitizeText strips script tags, tag markup, javascript:/data: URIs and
// inline event-handler attributes from free text. Sanitizing already
// sanitized text is a no-op.
func SanitizeText(s string) string {
	prev := ""
	for s != prev {
		prev = s
		s = reScriptBlock.ReplaceAllString(s, "")
		s = reScriptOpen.ReplaceAllString(s, "")
		s = reEventHandler.ReplaceAllString(s, "")
		s = reTag.ReplaceAllString(s, "")
		s = reJavascriptURI.ReplaceAllString(s, "")
		s = reDataURI.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// SanitizeMap sanitizes every key and value of a free-text map.
func SanitizeMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[SanitizeText(k)] = SanitizeText(v)
	}
	return out
}

// ContainsMaliciousContent rescans sanitized text for residual XSS and SQL
// injection signatures. Defense in depth after SanitizeText, not a
// replacement for it.
func ContainsMaliciousContent(s string) bool {
	for _, re := range maliciousPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
