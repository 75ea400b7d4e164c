package ast

import "fmt"

// Kind identifies the type of a Node.
type Kind uint8

const (
	Invalid Kind = iota
	Program
	Bad

	// Statements
	ExpressionStatement
	VariableDeclaration
	FunctionDeclaration
	ClassDeclaration
	Block
	Empty
	If
	For
	ForIn
	ForOf
	While
	DoWhile
	Return
	Break
	Continue
	Throw
	Try
	Catch
	Switch
	Case
	Labelled
	With
	Debugger

	// Expressions and other nodes
	Identifier
	Keyword
	MemberAccess
	Call
	New
	TaggedTemplate
	Function
	ArrowFunction
	Class
	Property
	Literal
	Template
	Array
	Object
	ArrayPattern
	ObjectPattern
	Binding
	Assign
	Binary
	Unary
	Update
	Conditional
	Sequence
	Spread
	Yield
	Await
	This
	Super
	MetaProperty

	kindCount
)

var kindNames = [...]string{
	Invalid:             "Invalid",
	Program:             "Program",
	Bad:                 "Bad",
	ExpressionStatement: "ExpressionStatement",
	VariableDeclaration: "VariableDeclaration",
	FunctionDeclaration: "FunctionDeclaration",
	ClassDeclaration:    "ClassDeclaration",
	Block:               "Block",
	Empty:               "Empty",
	If:                  "If",
	For:                 "For",
	ForIn:               "ForIn",
	ForOf:               "ForOf",
	While:               "While",
	DoWhile:             "DoWhile",
	Return:              "Return",
	Break:               "Break",
	Continue:            "Continue",
	Throw:               "Throw",
	Try:                 "Try",
	Catch:               "Catch",
	Switch:              "Switch",
	Case:                "Case",
	Labelled:            "Labelled",
	With:                "With",
	Debugger:            "Debugger",
	Identifier:          "Identifier",
	Keyword:             "Keyword",
	MemberAccess:        "MemberAccess",
	Call:                "Call",
	New:                 "New",
	TaggedTemplate:      "TaggedTemplate",
	Function:            "Function",
	ArrowFunction:       "ArrowFunction",
	Class:               "Class",
	Property:            "Property",
	Literal:             "Literal",
	Template:            "Template",
	Array:               "Array",
	Object:              "Object",
	ArrayPattern:        "ArrayPattern",
	ObjectPattern:       "ObjectPattern",
	Binding:             "Binding",
	Assign:              "Assign",
	Binary:              "Binary",
	Unary:               "Unary",
	Update:              "Update",
	Conditional:         "Conditional",
	Sequence:            "Sequence",
	Spread:              "Spread",
	Yield:               "Yield",
	Await:               "Await",
	This:                "This",
	Super:               "Super",
	MetaProperty:        "MetaProperty",
}

// String returns the stable tag name of the kind. These names are also the
// shape tags accepted in policy files.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// IsStatement reports whether nodes of this kind appear in statement position.
func (k Kind) IsStatement() bool {
	return k >= ExpressionStatement && k <= Debugger
}

// IsFunction reports whether the kind declares or creates a function.
func (k Kind) IsFunction() bool {
	return k == FunctionDeclaration || k == Function || k == ArrowFunction
}

// IsCall reports whether the kind invokes a callee.
func (k Kind) IsCall() bool {
	return k == Call || k == New || k == TaggedTemplate
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind returns the kind with the given tag name.
func ParseKind(name string) (Kind, error) {
	for k := Program; k < kindCount; k++ {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return Invalid, fmt.Errorf("unknown node kind %q", name)
}

// StatementKinds returns every statement kind in declaration order.
func StatementKinds() []Kind {
	var kinds []Kind
	for k := ExpressionStatement; k <= Debugger; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
