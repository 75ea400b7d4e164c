package policy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/risor-io/sanitizer/ast"
	"gopkg.in/yaml.v3"
)

// NameList is the serialized form of a mode-switchable layer.
type NameList struct {
	Mode  string   `yaml:"mode,omitempty" json:"mode,omitempty" mapstructure:"mode"`
	Names []string `yaml:"names,omitempty" json:"names,omitempty" mapstructure:"names"`
}

// Config is the serialized form of a Policy, as found in policy files:
//
//	name: scripts
//	extends: default
//	identifiers:
//	  mode: deny
//	  names: [fetch]
//	top_level_shapes: [FunctionDeclaration]
//	max_depth: 128
//
// With extends set, the named preset provides the starting point. Lists are
// merged with the preset's, except that a layer whose mode differs from the
// preset's starts from an empty set.
type Config struct {
	Name                       string   `yaml:"name" json:"name" mapstructure:"name"`
	Version                    string   `yaml:"version,omitempty" json:"version,omitempty" mapstructure:"version"`
	Extends                    string   `yaml:"extends,omitempty" json:"extends,omitempty" mapstructure:"extends"`
	Identifiers                NameList `yaml:"identifiers,omitempty" json:"identifiers" mapstructure:"identifiers"`
	Keywords                   NameList `yaml:"keywords,omitempty" json:"keywords" mapstructure:"keywords"`
	DisallowedProperties       []string `yaml:"disallowed_properties,omitempty" json:"disallowed_properties,omitempty" mapstructure:"disallowed_properties"`
	DisallowedPropertyPatterns []string `yaml:"disallowed_property_patterns,omitempty" json:"disallowed_property_patterns,omitempty" mapstructure:"disallowed_property_patterns"`
	DisallowedCallees          []string `yaml:"disallowed_callees,omitempty" json:"disallowed_callees,omitempty" mapstructure:"disallowed_callees"`
	AllowDynamicCallees        bool     `yaml:"allow_dynamic_callees,omitempty" json:"allow_dynamic_callees,omitempty" mapstructure:"allow_dynamic_callees"`
	BuiltInObjects             []string `yaml:"built_in_objects,omitempty" json:"built_in_objects,omitempty" mapstructure:"built_in_objects"`
	ReservedIdentifiers        []string `yaml:"reserved_identifiers,omitempty" json:"reserved_identifiers,omitempty" mapstructure:"reserved_identifiers"`
	ReservedIdentifierPatterns []string `yaml:"reserved_identifier_patterns,omitempty" json:"reserved_identifier_patterns,omitempty" mapstructure:"reserved_identifier_patterns"`
	MutableIdentifiers         []string `yaml:"mutable_identifiers,omitempty" json:"mutable_identifiers,omitempty" mapstructure:"mutable_identifiers"`
	ReservedFunctions          []string `yaml:"reserved_functions,omitempty" json:"reserved_functions,omitempty" mapstructure:"reserved_functions"`
	TopLevelShapes             []string `yaml:"top_level_shapes,omitempty" json:"top_level_shapes,omitempty" mapstructure:"top_level_shapes"`
	MaxDepth                   int      `yaml:"max_depth,omitempty" json:"max_depth,omitempty" mapstructure:"max_depth"`
	MaxNodeCount               int      `yaml:"max_node_count,omitempty" json:"max_node_count,omitempty" mapstructure:"max_node_count"`
	MaxSourceSize              int      `yaml:"max_source_size,omitempty" json:"max_source_size,omitempty" mapstructure:"max_source_size"`
}

// Build converts the configuration into a Policy.
func (c Config) Build() (*Policy, error) {
	var base Config
	switch strings.ToLower(strings.TrimSpace(c.Extends)) {
	case "", "none":
	case "default":
		base = Default().Config()
	case "permissive":
		base = Permissive().Config()
	default:
		return nil, fmt.Errorf("policy %q: unknown preset %q", c.Name, c.Extends)
	}

	idMode, identifiers, err := mergeLayer(base.Identifiers, c.Identifiers)
	if err != nil {
		return nil, fmt.Errorf("policy %q: identifiers: %w", c.Name, err)
	}
	kwMode, keywords, err := mergeLayer(base.Keywords, c.Keywords)
	if err != nil {
		return nil, fmt.Errorf("policy %q: keywords: %w", c.Name, err)
	}

	shapeNames := c.TopLevelShapes
	if len(shapeNames) == 0 {
		shapeNames = base.TopLevelShapes
	}
	shapes := make([]ast.Kind, 0, len(shapeNames))
	for _, name := range shapeNames {
		kind, err := ast.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("policy %q: top-level shapes: %w", c.Name, err)
		}
		shapes = append(shapes, kind)
	}

	version := c.Version
	if version == "" {
		version = base.Version
	}

	b := NewBuilder(c.Name).
		Version(version).
		IdentifierMode(idMode).
		Identifiers(identifiers...).
		KeywordMode(kwMode).
		Keywords(keywords...).
		DisallowedProperties(base.DisallowedProperties...).
		DisallowedProperties(c.DisallowedProperties...).
		DisallowedPropertyPatterns(base.DisallowedPropertyPatterns...).
		DisallowedPropertyPatterns(c.DisallowedPropertyPatterns...).
		DisallowedCallees(base.DisallowedCallees...).
		DisallowedCallees(c.DisallowedCallees...).
		AllowDynamicCallees(c.AllowDynamicCallees || base.AllowDynamicCallees).
		BuiltInObjects(base.BuiltInObjects...).
		BuiltInObjects(c.BuiltInObjects...).
		ReservedIdentifiers(base.ReservedIdentifiers...).
		ReservedIdentifiers(c.ReservedIdentifiers...).
		ReservedIdentifierPatterns(base.ReservedIdentifierPatterns...).
		ReservedIdentifierPatterns(c.ReservedIdentifierPatterns...).
		MutableIdentifiers(base.MutableIdentifiers...).
		MutableIdentifiers(c.MutableIdentifiers...).
		ReservedFunctions(base.ReservedFunctions...).
		ReservedFunctions(c.ReservedFunctions...).
		AllowTopLevelShapes(shapes...).
		MaxDepth(firstNonZero(c.MaxDepth, base.MaxDepth)).
		MaxNodeCount(firstNonZero(c.MaxNodeCount, base.MaxNodeCount)).
		MaxSourceSize(firstNonZero(c.MaxSourceSize, base.MaxSourceSize))
	return b.Build()
}

func mergeLayer(base, layer NameList) (Mode, []string, error) {
	baseMode, err := ParseMode(base.Mode)
	if err != nil {
		return DenyList, nil, err
	}
	if strings.TrimSpace(layer.Mode) == "" {
		return baseMode, append(append([]string(nil), base.Names...), layer.Names...), nil
	}
	mode, err := ParseMode(layer.Mode)
	if err != nil {
		return DenyList, nil, err
	}
	if mode != baseMode {
		return mode, append([]string(nil), layer.Names...), nil
	}
	return mode, append(append([]string(nil), base.Names...), layer.Names...), nil
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Load reads a YAML policy document from r. Unknown keys are rejected so
// that a misspelled deny list cannot silently disable a layer.
func Load(r io.Reader) (*Policy, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var c Config
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("policy document is empty")
		}
		return nil, fmt.Errorf("decoding policy: %w", err)
	}
	return c.Build()
}

// LoadFile reads a YAML policy document from the named file.
func LoadFile(path string) (*Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
