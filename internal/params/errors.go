package params

import "strings"

// Violation is one broken construction rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rule a set of inputs violates, in check order.
type ValidationError struct {
	Violations []Violation `json:"violations"`
}

func (e *ValidationError) add(field, message string) {
	e.Violations = append(e.Violations, Violation{Field: field, Message: message})
}

// Error joins all violation messages.
func (e *ValidationError) Error() string {
	msgs := e.Messages()
	return "validation errors: " + strings.Join(msgs, ", ")
}

// Messages returns the violation messages in order.
func (e *ValidationError) Messages() []string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return msgs
}

// Fields returns the distinct offending field names in first-seen order.
func (e *ValidationError) Fields() []string {
	seen := make(map[string]bool, len(e.Violations))
	var fields []string
	for _, v := range e.Violations {
		if !seen[v.Field] {
			seen[v.Field] = true
			fields = append(fields, v.Field)
		}
	}
	return fields
}
