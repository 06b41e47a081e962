package logger

import (
	"regexp"
	"strings"
)

// Sensitive field patterns to filter from logs
var (
	tokenPattern  = regexp.MustCompile(`(?i)(token|jwt|bearer)[\s:=]+[^\s]+`)
	secretPattern = regexp.MustCompile(`(?i)(secret|private[_-]?key)[\s:=]+[^\s]+`)
	mailtoPattern = regexp.MustCompile(`mailto:[^\s"<>]+`)
)

const redactedPlaceholder = "[REDACTED]"

// SanitizeLogMessage removes sensitive information from log messages.
// WebIDs are public identifiers and stay readable; bearer tokens and
// mailto-style agent identifiers do not.
func SanitizeLogMessage(message string) string {
	message = tokenPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = secretPattern.ReplaceAllString(message, "${1}="+redactedPlaceholder)
	message = mailtoPattern.ReplaceAllString(message, redactedPlaceholder)
	return message
}

// SanitizeMap removes sensitive keys from structured log fields
func SanitizeMap(data map[string]interface{}) map[string]interface{} {
	sensitiveKeys := []string{
		"token", "jwt", "bearer",
		"secret", "private_key", "private-key",
		"authorization",
	}

	sanitized := make(map[string]interface{}, len(data))
	for k, v := range data {
		lowerKey := strings.ToLower(k)
		isSensitive := false
		for _, sk := range sensitiveKeys {
			if strings.Contains(lowerKey, sk) {
				isSensitive = true
				break
			}
		}
		if isSensitive {
			sanitized[k] = redactedPlaceholder
		} else {
			sanitized[k] = v
		}
	}
	return sanitized
}
