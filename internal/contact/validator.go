package contact

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// EmailRegex matches a practical email address grammar; intentionally
// stricter than RFC 5322 but permissive enough for real-world addresses.
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minDetailsLength = 5

// ParseSubmission checks an arbitrary decoded request body against the
// submission schema and returns either a normalized Submission or a
// field-keyed collection of error messages. It is pure and performs no
// side effects; unknown top-level keys are ignored.
func ParseSubmission(body map[string]interface{}) (*Submission, FieldErrors) {
	fieldErrors := FieldErrors{}

	email := requiredString(body, "email", fieldErrors)
	if email != "" && !EmailRegex.MatchString(email) {
		fieldErrors.add("email", "email must be a valid email address")
	}

	details := requiredString(body, "details", fieldErrors)
	// Length is counted in characters, not bytes, so multibyte input near
	// the boundary behaves the same as ASCII.
	if details != "" && utf8.RuneCountInString(details) < minDetailsLength {
		fieldErrors.add("details", fmt.Sprintf("details must be at least %d characters", minDetailsLength))
	}

	sub := &Submission{
		Email:   email,
		Details: details,
		Name:    optionalString(body, "name", fieldErrors),
		Company: optionalString(body, "company", fieldErrors),
		Budget:  optionalString(body, "budget", fieldErrors),
	}

	if raw, exists := body["meta"]; exists && raw != nil {
		meta, ok := raw.(map[string]interface{})
		if !ok {
			fieldErrors.add("meta", "meta must be an object")
		} else {
			// Opaque passthrough: keys and values inside meta are never
			// validated or rejected.
			sub.Meta = meta
		}
	}

	if !fieldErrors.Empty() {
		return nil, fieldErrors
	}
	return sub, nil
}

func requiredString(body map[string]interface{}, field string, fieldErrors FieldErrors) string {
	raw, exists := body[field]
	if !exists || raw == nil {
		fieldErrors.add(field, fmt.Sprintf("%s is required", field))
		return ""
	}
	value, ok := raw.(string)
	if !ok {
		fieldErrors.add(field, fmt.Sprintf("%s must be a string", field))
		return ""
	}
	if strings.TrimSpace(value) == "" {
		fieldErrors.add(field, fmt.Sprintf("%s is required", field))
		return ""
	}
	return value
}

func optionalString(body map[string]interface{}, field string, fieldErrors FieldErrors) string {
	raw, exists := body[field]
	if !exists || raw == nil {
		return ""
	}
	value, ok := raw.(string)
	if !ok {
		fieldErrors.add(field, fmt.Sprintf("%s must be a string", field))
		return ""
	}
	return value
}
