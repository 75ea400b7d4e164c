package syntax

import "fmt"

// Code identifies the kind of a Violation.
type Code string

const (
	// Input errors
	SyntaxError Code = "SyntaxError" // Source does not parse
	EmptySource Code = "EmptySource" // Source contains no code where some is required

	// Policy errors
	DisallowedIdentifier Code = "DisallowedIdentifier" // Identifier rejected by the identifier layer
	DisallowedKeyword    Code = "DisallowedKeyword"    // Reserved word rejected by the keyword layer
	DisallowedProperty   Code = "DisallowedProperty"   // Member name on the property deny layer
	DisallowedCallee     Code = "DisallowedCallee"     // Call target on the callee deny layer, or unresolvable
	ReservedIdentifier   Code = "ReservedIdentifier"   // Host-reserved name declared or assigned

	// Shape errors
	DisallowedStatementShape Code = "DisallowedStatementShape" // Construct is recognized but not permitted
	UnexpectedTopLevelShape  Code = "UnexpectedTopLevelShape"  // Top-level statement has the wrong shape

	// Resource errors
	ResourceLimitExceeded Code = "ResourceLimitExceeded" // Depth or node-count bound hit
)

var codeDescriptions = map[Code]string{
	SyntaxError:              "source does not parse",
	EmptySource:              "source is empty",
	DisallowedIdentifier:     "identifier is not allowed",
	DisallowedKeyword:        "keyword is not allowed",
	DisallowedProperty:       "property is not allowed",
	DisallowedCallee:         "call target is not allowed",
	ReservedIdentifier:       "reserved identifier is declared or assigned",
	DisallowedStatementShape: "construct is not allowed",
	UnexpectedTopLevelShape:  "unexpected top-level shape",
	ResourceLimitExceeded:    "resource limit exceeded",
}

var codeCategories = map[Code]string{
	SyntaxError:              "syntax",
	EmptySource:              "syntax",
	DisallowedIdentifier:     "policy",
	DisallowedKeyword:        "policy",
	DisallowedProperty:       "policy",
	DisallowedCallee:         "policy",
	ReservedIdentifier:       "policy",
	DisallowedStatementShape: "shape",
	UnexpectedTopLevelShape:  "shape",
	ResourceLimitExceeded:    "resource",
}

// Codes returns every known code.
func Codes() []Code {
	return []Code{
		SyntaxError, EmptySource,
		DisallowedIdentifier, DisallowedKeyword, DisallowedProperty, DisallowedCallee,
		ReservedIdentifier,
		DisallowedStatementShape, UnexpectedTopLevelShape,
		ResourceLimitExceeded,
	}
}

// Description returns the short description for a code.
func (c Code) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown violation"
}

// String returns the code as a string.
func (c Code) String() string {
	return string(c)
}

// Category returns one of "syntax", "policy", "shape" or "resource".
func (c Code) Category() string {
	if cat, ok := codeCategories[c]; ok {
		return cat
	}
	return "unknown"
}

// Severity grades a Violation. There is no warning level: every violation
// rejects the input.
type Severity uint8

const (
	SeverityError Severity = iota
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("Severity(%d)", uint8(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
