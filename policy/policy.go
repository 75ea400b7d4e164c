// Package policy defines the immutable rule set a script is checked against.
//
// The identifier and keyword layers are each switchable between allow-list
// and deny-list mode. The property and callee layers are deny lists that are
// always enforced, whatever the mode of the other layers, so that known
// escape vectors stay blocked even under a permissive identifier allow list.
//
// The reserved-name layer protects names the host owns. Built-in objects and
// reserved identifiers may be read but never declared, and assigned only
// when listed as mutable. Reserved functions are entry points the host calls
// after running the script, so they may only be declared by a top-level
// function declaration.
package policy

import (
	"sort"

	"github.com/gobwas/glob"
	"github.com/risor-io/sanitizer/ast"
)

const (
	// DefaultMaxDepth bounds tree depth when a policy does not set one.
	DefaultMaxDepth = 512
	// DefaultMaxNodeCount bounds tree size when a policy does not set one.
	DefaultMaxNodeCount = 100_000
	// DefaultMaxSourceSize bounds the source length in bytes when a policy
	// does not set one.
	DefaultMaxSourceSize = 256 << 10
)

type nameSet map[string]struct{}

func newNameSet(names []string) nameSet {
	s := make(nameSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s nameSet) sorted() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Policy is an immutable set of rules. Build one with a Builder or load one
// from a Config. A Policy is safe for concurrent use by any number of checks.
type Policy struct {
	name    string
	version string

	identifierMode Mode
	identifiers    nameSet
	keywordMode    Mode
	keywords       nameSet

	disallowedProperties nameSet
	propertyPatterns     []glob.Glob
	patternSources       []string
	disallowedCallees    nameSet
	dynamicCallees       bool

	builtInObjects         nameSet
	reservedIdentifiers    nameSet
	reservedPatterns       []glob.Glob
	reservedPatternSources []string
	mutableIdentifiers     nameSet
	reservedFunctions      nameSet

	shapes map[ast.Kind]struct{}

	maxDepth      int
	maxNodeCount  int
	maxSourceSize int
}

// Name returns the policy name.
func (p *Policy) Name() string { return p.name }

// Version returns the policy version string.
func (p *Policy) Version() string { return p.version }

// IdentifierMode returns the mode of the identifier layer.
func (p *Policy) IdentifierMode() Mode { return p.identifierMode }

// KeywordMode returns the mode of the keyword layer.
func (p *Policy) KeywordMode() Mode { return p.keywordMode }

// MaxDepth returns the maximum permitted tree depth.
func (p *Policy) MaxDepth() int { return p.maxDepth }

// MaxNodeCount returns the maximum permitted number of tree nodes.
func (p *Policy) MaxNodeCount() int { return p.maxNodeCount }

// MaxSourceSize returns the maximum permitted source length in bytes.
func (p *Policy) MaxSourceSize() int { return p.maxSourceSize }

// IsIdentifierAllowed reports whether name may be used as an identifier.
func (p *Policy) IsIdentifierAllowed(name string) bool {
	return p.identifierMode.admits(p.identifiers.has(name))
}

// IsKeywordAllowed reports whether the reserved word may be used.
func (p *Policy) IsKeywordAllowed(word string) bool {
	return p.keywordMode.admits(p.keywords.has(word))
}

// IsPropertyAllowed reports whether a member with the given name may be
// accessed or defined. This layer is a deny list in every mode.
func (p *Policy) IsPropertyAllowed(name string) bool {
	if p.disallowedProperties.has(name) {
		return false
	}
	for _, g := range p.propertyPatterns {
		if g.Match(name) {
			return false
		}
	}
	return true
}

// IsCalleeAllowed reports whether a call may target the given name. This
// layer is a deny list in every mode.
func (p *Policy) IsCalleeAllowed(name string) bool {
	return !p.disallowedCallees.has(name)
}

// AllowsDynamicCallees reports whether calls whose target cannot be resolved
// statically, such as f()() or obj[key](), are permitted.
func (p *Policy) AllowsDynamicCallees() bool {
	return p.dynamicCallees
}

// IsBuiltInObject reports whether name is a global the host provides.
func (p *Policy) IsBuiltInObject(name string) bool {
	return p.builtInObjects.has(name)
}

// IsReservedIdentifier reports whether name is reserved for the host, either
// by name or by pattern.
func (p *Policy) IsReservedIdentifier(name string) bool {
	if p.reservedIdentifiers.has(name) {
		return true
	}
	for _, g := range p.reservedPatterns {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// IsMutableIdentifier reports whether a built-in or reserved name may be
// assigned.
func (p *Policy) IsMutableIdentifier(name string) bool {
	return p.mutableIdentifiers.has(name)
}

// IsReservedFunction reports whether name is a host entry point that may
// only be declared as a top-level function.
func (p *Policy) IsReservedFunction(name string) bool {
	return p.reservedFunctions.has(name)
}

// IsTopLevelShapeAllowed reports whether a statement of the given kind may
// appear at the top level of a script. A policy without a shape list permits
// every statement kind.
func (p *Policy) IsTopLevelShapeAllowed(kind ast.Kind) bool {
	if len(p.shapes) == 0 {
		return kind.IsStatement()
	}
	_, ok := p.shapes[kind]
	return ok
}

// Identifiers returns the sorted identifier set.
func (p *Policy) Identifiers() []string { return p.identifiers.sorted() }

// Keywords returns the sorted keyword set.
func (p *Policy) Keywords() []string { return p.keywords.sorted() }

// DisallowedProperties returns the sorted property deny set.
func (p *Policy) DisallowedProperties() []string { return p.disallowedProperties.sorted() }

// DisallowedPropertyPatterns returns the property deny patterns in the order
// they were given.
func (p *Policy) DisallowedPropertyPatterns() []string {
	return append([]string(nil), p.patternSources...)
}

// DisallowedCallees returns the sorted callee deny set.
func (p *Policy) DisallowedCallees() []string { return p.disallowedCallees.sorted() }

// BuiltInObjects returns the sorted built-in object set.
func (p *Policy) BuiltInObjects() []string { return p.builtInObjects.sorted() }

// ReservedIdentifiers returns the sorted reserved identifier set.
func (p *Policy) ReservedIdentifiers() []string { return p.reservedIdentifiers.sorted() }

// ReservedIdentifierPatterns returns the reserved identifier patterns in the
// order they were given.
func (p *Policy) ReservedIdentifierPatterns() []string {
	return append([]string(nil), p.reservedPatternSources...)
}

// MutableIdentifiers returns the sorted set of reserved names that may be
// assigned.
func (p *Policy) MutableIdentifiers() []string { return p.mutableIdentifiers.sorted() }

// ReservedFunctions returns the sorted reserved function set.
func (p *Policy) ReservedFunctions() []string { return p.reservedFunctions.sorted() }

// TopLevelShapes returns the permitted top-level statement kinds in kind
// order. An empty result means every statement kind is permitted.
func (p *Policy) TopLevelShapes() []ast.Kind {
	kinds := make([]ast.Kind, 0, len(p.shapes))
	for k := range p.shapes {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Config returns a Config that builds an equivalent policy.
func (p *Policy) Config() Config {
	shapes := make([]string, 0, len(p.shapes))
	for _, k := range p.TopLevelShapes() {
		shapes = append(shapes, k.String())
	}
	return Config{
		Name:                       p.name,
		Version:                    p.version,
		Extends:                    "none",
		Identifiers:                NameList{Mode: p.identifierMode.String(), Names: p.Identifiers()},
		Keywords:                   NameList{Mode: p.keywordMode.String(), Names: p.Keywords()},
		DisallowedProperties:       p.DisallowedProperties(),
		DisallowedPropertyPatterns: p.DisallowedPropertyPatterns(),
		DisallowedCallees:          p.DisallowedCallees(),
		AllowDynamicCallees:        p.dynamicCallees,
		BuiltInObjects:             p.BuiltInObjects(),
		ReservedIdentifiers:        p.ReservedIdentifiers(),
		ReservedIdentifierPatterns: p.ReservedIdentifierPatterns(),
		MutableIdentifiers:         p.MutableIdentifiers(),
		ReservedFunctions:          p.ReservedFunctions(),
		TopLevelShapes:             shapes,
		MaxDepth:                   p.maxDepth,
		MaxNodeCount:               p.maxNodeCount,
		MaxSourceSize:              p.maxSourceSize,
	}
}
