package policy

import (
	"fmt"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/risor-io/sanitizer/ast"
)

// Builder accumulates policy settings. Setters return the builder so calls
// can be chained; Build produces the immutable Policy. A Builder is not safe
// for concurrent use.
type Builder struct {
	name           string
	version        string
	identifierMode Mode
	identifiers    []string
	keywordMode    Mode
	keywords       []string
	properties     []string
	patterns       []string
	callees        []string
	dynamicCallees bool
	builtIns       []string
	reserved       []string
	reservedGlobs  []string
	mutable        []string
	functions      []string
	shapes         []ast.Kind
	maxDepth       int
	maxNodeCount   int
	maxSourceSize  int
}

// NewBuilder returns a builder for a policy with the given name. Both name
// layers start in DenyList mode with empty sets.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, identifierMode: DenyList, keywordMode: DenyList}
}

// Version sets the policy version string.
func (b *Builder) Version(version string) *Builder {
	b.version = version
	return b
}

// IdentifierMode sets the mode of the identifier layer.
func (b *Builder) IdentifierMode(mode Mode) *Builder {
	b.identifierMode = mode
	return b
}

// Identifiers adds names to the identifier set.
func (b *Builder) Identifiers(names ...string) *Builder {
	b.identifiers = append(b.identifiers, names...)
	return b
}

// KeywordMode sets the mode of the keyword layer.
func (b *Builder) KeywordMode(mode Mode) *Builder {
	b.keywordMode = mode
	return b
}

// Keywords adds reserved words to the keyword set.
func (b *Builder) Keywords(words ...string) *Builder {
	b.keywords = append(b.keywords, words...)
	return b
}

// DisallowedProperties adds member names that may never be accessed or
// defined.
func (b *Builder) DisallowedProperties(names ...string) *Builder {
	b.properties = append(b.properties, names...)
	return b
}

// DisallowedPropertyPatterns adds glob patterns (github.com/gobwas/glob
// syntax) of member names that may never be accessed or defined.
func (b *Builder) DisallowedPropertyPatterns(patterns ...string) *Builder {
	b.patterns = append(b.patterns, patterns...)
	return b
}

// DisallowedCallees adds names that may never be called.
func (b *Builder) DisallowedCallees(names ...string) *Builder {
	b.callees = append(b.callees, names...)
	return b
}

// AllowDynamicCallees permits calls whose target cannot be resolved
// statically. They are rejected by default.
func (b *Builder) AllowDynamicCallees(allow bool) *Builder {
	b.dynamicCallees = allow
	return b
}

// BuiltInObjects adds globals the host provides. Scripts may read them but
// may not declare them, nor assign them unless they are mutable.
func (b *Builder) BuiltInObjects(names ...string) *Builder {
	b.builtIns = append(b.builtIns, names...)
	return b
}

// ReservedIdentifiers adds names the host reserves for itself. They follow
// the same rules as built-in objects.
func (b *Builder) ReservedIdentifiers(names ...string) *Builder {
	b.reserved = append(b.reserved, names...)
	return b
}

// ReservedIdentifierPatterns adds glob patterns (github.com/gobwas/glob
// syntax) of reserved identifiers.
func (b *Builder) ReservedIdentifierPatterns(patterns ...string) *Builder {
	b.reservedGlobs = append(b.reservedGlobs, patterns...)
	return b
}

// MutableIdentifiers adds built-in or reserved names that scripts may
// assign.
func (b *Builder) MutableIdentifiers(names ...string) *Builder {
	b.mutable = append(b.mutable, names...)
	return b
}

// ReservedFunctions adds host entry points. They may only be declared by a
// top-level function declaration.
func (b *Builder) ReservedFunctions(names ...string) *Builder {
	b.functions = append(b.functions, names...)
	return b
}

// AllowTopLevelShapes adds statement kinds permitted at the top level.
func (b *Builder) AllowTopLevelShapes(kinds ...ast.Kind) *Builder {
	b.shapes = append(b.shapes, kinds...)
	return b
}

// MaxDepth sets the maximum tree depth. Zero selects DefaultMaxDepth.
func (b *Builder) MaxDepth(depth int) *Builder {
	b.maxDepth = depth
	return b
}

// MaxNodeCount sets the maximum number of tree nodes. Zero selects
// DefaultMaxNodeCount.
func (b *Builder) MaxNodeCount(count int) *Builder {
	b.maxNodeCount = count
	return b
}

// MaxSourceSize sets the maximum source length in bytes. Zero selects
// DefaultMaxSourceSize.
func (b *Builder) MaxSourceSize(size int) *Builder {
	b.maxSourceSize = size
	return b
}

// Build validates the settings and returns the policy. The policy holds
// copies of every set, so the builder may be reused afterwards.
func (b *Builder) Build() (*Policy, error) {
	var errs *multierror.Error
	if b.identifierMode > AllowList {
		errs = multierror.Append(errs, fmt.Errorf("invalid identifier mode %s", b.identifierMode))
	}
	if b.keywordMode > AllowList {
		errs = multierror.Append(errs, fmt.Errorf("invalid keyword mode %s", b.keywordMode))
	}
	if b.maxDepth < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max depth must not be negative, got %d", b.maxDepth))
	}
	if b.maxNodeCount < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max node count must not be negative, got %d", b.maxNodeCount))
	}
	if b.maxSourceSize < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max source size must not be negative, got %d", b.maxSourceSize))
	}

	patterns := make([]glob.Glob, 0, len(b.patterns))
	for _, src := range b.patterns {
		g, err := glob.Compile(src)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("property pattern %q: %w", src, err))
			continue
		}
		patterns = append(patterns, g)
	}

	reservedPatterns := make([]glob.Glob, 0, len(b.reservedGlobs))
	for _, src := range b.reservedGlobs {
		g, err := glob.Compile(src)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("reserved identifier pattern %q: %w", src, err))
			continue
		}
		reservedPatterns = append(reservedPatterns, g)
	}

	shapes := make(map[ast.Kind]struct{}, len(b.shapes))
	for _, k := range b.shapes {
		if !k.IsStatement() {
			errs = multierror.Append(errs, fmt.Errorf("top-level shape %s is not a statement kind", k))
			continue
		}
		shapes[k] = struct{}{}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("policy %q: %w", b.name, err)
	}

	p := &Policy{
		name:                   b.name,
		version:                b.version,
		identifierMode:         b.identifierMode,
		identifiers:            newNameSet(b.identifiers),
		keywordMode:            b.keywordMode,
		keywords:               newNameSet(b.keywords),
		disallowedProperties:   newNameSet(b.properties),
		propertyPatterns:       patterns,
		patternSources:         append([]string(nil), b.patterns...),
		disallowedCallees:      newNameSet(b.callees),
		dynamicCallees:         b.dynamicCallees,
		builtInObjects:         newNameSet(b.builtIns),
		reservedIdentifiers:    newNameSet(b.reserved),
		reservedPatterns:       reservedPatterns,
		reservedPatternSources: append([]string(nil), b.reservedGlobs...),
		mutableIdentifiers:     newNameSet(b.mutable),
		reservedFunctions:      newNameSet(b.functions),
		shapes:                 shapes,
		maxDepth:               b.maxDepth,
		maxNodeCount:           b.maxNodeCount,
		maxSourceSize:          b.maxSourceSize,
	}
	if p.maxDepth == 0 {
		p.maxDepth = DefaultMaxDepth
	}
	if p.maxNodeCount == 0 {
		p.maxNodeCount = DefaultMaxNodeCount
	}
	if p.maxSourceSize == 0 {
		p.maxSourceSize = DefaultMaxSourceSize
	}
	return p, nil
}

// MustBuild is like Build but panics on error. It is intended for policies
// defined in code.
func (b *Builder) MustBuild() *Policy {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
