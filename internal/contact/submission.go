package contact

// Submission is a validated contact-form payload. Email and Details are
// always present and non-empty; ParseSubmission is the sole gate enforcing
// this. Meta is opaque and forwarded verbatim to whichever sinks use it.
type Submission struct {
	Name    string                 `json:"name,omitempty"`
	Email   string                 `json:"email"`
	Company string                 `json:"company,omitempty"`
	Budget  string                 `json:"budget,omitempty"`
	Details string                 `json:"details"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// DisplayName returns the name to present in email subjects and record
// titles, falling back to the email address.
func (s *Submission) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Email
}

// FieldErrors maps a field name to one or more validation messages. It is
// serialized as-is in the 400 response body.
type FieldErrors map[string][]string

func (e FieldErrors) add(field, message string) {
	e[field] = append(e[field], message)
}

// Empty reports whether no field accumulated an error.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}
