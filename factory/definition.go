package factory

import (
	"maps"

	apperrors "github.com/kbukum/factorygirl/errors"
	"github.com/kbukum/factorygirl/sequence"
	"github.com/kbukum/factorygirl/util"
)

// Attributes maps attribute (column) names to values or value templates.
type Attributes map[string]any

// Clone returns a shallow copy of a.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return Attributes{}
	}
	return maps.Clone(a)
}

// Definition is the factory for one model class.
type Definition struct {
	// ClassName is the identifier definitions are indexed by.
	ClassName string
	// TableName is the table rows of this class are stored in.
	TableName string
	// Attributes are the default value templates.
	Attributes Attributes
	// Aliases are named overlays applied on top of Attributes.
	Aliases map[string]Attributes
	// Source is the file the definition was parsed from, if any.
	Source string
}

// NewDefinition builds a definition programmatically. The maps are copied.
func NewDefinition(className, tableName string, attrs Attributes, aliases map[string]Attributes) (*Definition, error) {
	if className == "" {
		return nil, apperrors.Configuration("factory definition requires a class name")
	}
	if tableName == "" {
		return nil, apperrors.Configuration("factory definition for " + className + " requires a table name")
	}

	d := &Definition{
		ClassName:  className,
		TableName:  tableName,
		Attributes: attrs.Clone(),
		Aliases:    make(map[string]Attributes, len(aliases)),
	}
	for name, overlay := range aliases {
		d.Aliases[name] = overlay.Clone()
	}
	return d, nil
}

// HasAlias reports whether alias is defined.
func (d *Definition) HasAlias(alias string) bool {
	_, ok := d.Aliases[alias]
	return ok
}

// AliasNames returns the alias names in sorted order.
func (d *Definition) AliasNames() []string {
	return util.SortedKeys(d.Aliases)
}

// Resolve computes the attribute values for one build. The defaults are
// overlaid with the alias (when alias is not empty) and then with
// overrides; every value is then run through seq.
//
// An alias that is not defined fails with UNKNOWN_ALIAS and no partial
// result. Values are expanded in key order so a counter shared by several
// attributes advances the same way on every run.
func (d *Definition) Resolve(seq *sequence.Generator, overrides Attributes, alias string) (Attributes, error) {
	out := d.Attributes.Clone()

	if alias != "" {
		overlay, ok := d.Aliases[alias]
		if !ok {
			return nil, apperrors.UnknownAlias(d.ClassName, alias)
		}
		maps.Copy(out, overlay)
	}
	maps.Copy(out, overrides)

	for _, key := range util.SortedKeys(out) {
		out[key] = seq.ExpandValue(out[key])
	}
	return out, nil
}
