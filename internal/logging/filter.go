// Package logging provides logging utilities including sensitive data
// filtering. Task prompts and follow-up text are user-supplied and routinely
// contain pasted credentials; the filter keeps them out of the rotating log
// file.
package logging

import (
	"io"
	"regexp"
	"strings"
)

// RedactedValue is the replacement string for sensitive data.
const RedactedValue = "[REDACTED]"

// sensitivePatterns contains compiled regular expressions for detecting
// sensitive values: common API key, token, and credential formats.
var sensitivePatterns = []*regexp.Regexp{
	// Anthropic API keys (sk-ant-api...)
	regexp.MustCompile(`sk-ant-api[a-zA-Z0-9_-]+`),

	// OpenAI-style keys (sk-...)
	regexp.MustCompile(`sk-[a-zA-Z0-9]{20,}`),

	// GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_)
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`),

	// Bearer tokens
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9_-]{20,}`),

	// Generic secret assignments (secret, password, token, api_key = value)
	regexp.MustCompile(`(?i)(api[_-]?key|secret|password|passwd|credential|token)\s*[:=]\s*["']?[^\s"']{8,}["']?`),

	// SSH private keys
	regexp.MustCompile(`(?i)-----BEGIN[A-Z\s]+PRIVATE KEY-----`),
}

// sensitiveFieldNames contains field names whose values are always redacted.
// Matching is case-insensitive and substring-based.
var sensitiveFieldNames = []string{
	"api_key",
	"apikey",
	"password",
	"passwd",
	"secret",
	"credential",
	"token",
	"authorization",
	"private_key",
}

// ContainsSensitiveData checks if a string contains any sensitive data
// patterns.
func ContainsSensitiveData(s string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

// FilterSensitiveValue replaces any matches of sensitive patterns with
// RedactedValue. Use when logging potentially sensitive values such as
// prompts or command output.
func FilterSensitiveValue(value string) string {
	result := value
	for _, pattern := range sensitivePatterns {
		result = pattern.ReplaceAllString(result, RedactedValue)
	}
	return result
}

// IsSensitiveFieldName checks if a field name indicates sensitive data.
func IsSensitiveFieldName(fieldName string) bool {
	lowerName := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFieldNames {
		if strings.Contains(lowerName, sensitive) {
			return true
		}
	}
	return false
}

// SafeValue returns a filtered value for a field: fully redacted if the name
// itself is sensitive, otherwise pattern-filtered.
func SafeValue(fieldName, value string) string {
	if IsSensitiveFieldName(fieldName) {
		return RedactedValue
	}
	return FilterSensitiveValue(value)
}

// FilteringWriter wraps an io.Writer and filters sensitive data from output.
// It wraps the rotating log file writer so secrets never reach disk even if
// they appear inside a log message.
type FilteringWriter struct {
	w io.Writer
}

// NewFilteringWriter creates a FilteringWriter around w.
func NewFilteringWriter(w io.Writer) *FilteringWriter {
	return &FilteringWriter{w: w}
}

// Write implements io.Writer, filtering sensitive data before writing.
// It reports the original length so callers do not see a short write when
// redaction shrinks the payload.
func (fw *FilteringWriter) Write(p []byte) (n int, err error) {
	filtered := FilterSensitiveValue(string(p))
	if _, err = fw.w.Write([]byte(filtered)); err != nil {
		return 0, err
	}
	return len(p), nil
}
