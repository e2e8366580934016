package diag

// Severity orders diagnostics; the checker itself only reports SevError,
// the lower levels exist for driver notes (cache, config).
type Severity uint8

const (
	SevNote Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{
	SevNote:    "note",
	SevWarning: "warning",
	SevError:   "error",
}

// Label is the lower-case form used in text output.
func (s Severity) Label() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "unknown"
}

// String is the upper-case form used in JSON output.
func (s Severity) String() string {
	switch s {
	case SevNote:
		return "NOTE"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
