package pdp

// XACML status code identifiers. Codes form a hierarchy: a status carries the
// most specific code first, followed by its ancestors.
const (
	// StatusOK indicates successful evaluation.
	StatusOK = "urn:oasis:names:tc:xacml:1.0:status:ok"
	// StatusMissingAttribute indicates a required attribute was absent.
	StatusMissingAttribute = "urn:oasis:names:tc:xacml:1.0:status:missing-attribute"
	// StatusSyntaxError indicates a malformed value or path.
	StatusSyntaxError = "urn:oasis:names:tc:xacml:1.0:status:syntax-error"
	// StatusProcessingError indicates an unexpected runtime failure.
	StatusProcessingError = "urn:oasis:names:tc:xacml:1.0:status:processing-error"
)

// Status describes why an evaluation produced Indeterminate. The zero value
// is the OK status.
type Status struct {
	// Codes is the status-code chain, most specific first. Empty means OK.
	Codes []string
	// Message is an optional diagnostic for the caller. It never carries
	// implementation detail beyond what the status code already implies.
	Message string
}

// NewStatus builds a single-code status with a diagnostic message.
func NewStatus(code, message string) Status {
	return Status{Codes: []string{code}, Message: message}
}

// OK reports whether the status represents successful evaluation.
func (s Status) OK() bool {
	return len(s.Codes) == 0 || s.Codes[0] == StatusOK
}

// Code returns the most specific status code, or StatusOK for the zero value.
func (s Status) Code() string {
	if len(s.Codes) == 0 {
		return StatusOK
	}
	return s.Codes[0]
}
