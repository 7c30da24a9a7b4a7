package jsonelem

import "context"

// Producer yields a computed JSON value. Every Element is a Producer; slots
// accept any Producer so that non-element providers can participate in
// composite keys.
type Producer interface {
	JSON(ctx context.Context) (any, error)
}

// Getter resolves one schema key against live element state. The second
// result reports definedness: (_, false, nil) omits the key from the emitted
// object. Issues returned here are rooted at "/" and rebased under the key by
// the assembler.
type Getter func(ctx context.Context, attr AttrValue, slotted []Producer) (any, bool, error)

// Input is the closed set of schema input variants. Classification happens
// once at compile time; there is no runtime shape sniffing.
type Input interface{ schemaInput() }

// LiteralInput always yields the fixed value (bool, number, string or nil).
type LiteralInput struct{ Value any }

// BoolInput reads one attribute with presence-based boolean semantics.
type BoolInput struct{}

// NumberInput reads one attribute as a numeric literal. Strict turns an
// unparsable present attribute into a not_a_number error instead of
// undefined.
type NumberInput struct{ Strict bool }

// StringInput reads one attribute; absent or empty is undefined.
type StringInput struct{}

// ObjectInput reads the first conforming slotted child's computed JSON.
// Of == nil accepts any Producer.
type ObjectInput struct{ Of *Definition }

// ObjectRef is ObjectInput with the expected definition resolved lazily by
// name against the registry, enabling recursive element types.
type ObjectRef struct{ Name string }

// ArrayInput reads every conforming slotted child's computed JSON in slot
// order. Of == nil accepts any Producer.
type ArrayInput struct{ Of *Definition }

// ArrayRef is ArrayInput with lazy name resolution.
type ArrayRef struct{ Name string }

// EnumInput tries alternatives strictly in authoring order; the first match
// per the definition's EnumPolicy wins.
type EnumInput struct{ Alts []Input }

// AttrFunc is an attribute-only custom transform; no slot is created.
type AttrFunc struct {
	Fn func(ctx context.Context, attr AttrValue) (any, bool, error)
}

// SlotFunc is an attribute-plus-children custom transform; a slot placeholder
// is created for its key.
type SlotFunc struct{ Fn Getter }

// GetterInput passes an already-compiled getter through unchanged.
type GetterInput struct {
	Get     Getter
	Slotted bool
}

func (LiteralInput) schemaInput() {}
func (BoolInput) schemaInput()    {}
func (NumberInput) schemaInput()  {}
func (StringInput) schemaInput()  {}
func (ObjectInput) schemaInput()  {}
func (ObjectRef) schemaInput()    {}
func (ArrayInput) schemaInput()   {}
func (ArrayRef) schemaInput()     {}
func (EnumInput) schemaInput()    {}
func (AttrFunc) schemaInput()     {}
func (SlotFunc) schemaInput()     {}
func (GetterInput) schemaInput()  {}

// compositeKind tags compiled keys whose values are rebuilt from child
// elements so the ordered encoder can walk them recursively.
type compositeKind int

const (
	kindPlain compositeKind = iota
	kindObject
	kindArray
)

type compiledKey struct {
	name     string
	get      Getter
	slotted  bool
	required bool
	kind     compositeKind
	// expects resolves the typed slot's expected definition; nil for untyped
	// and non-composite keys.
	expects func() (*Definition, error)
	// alts holds the compiled enumeration alternatives so the ordered encoder
	// can recurse into a composite winner; empty for non-enum keys.
	alts []compiledKey
	in   Input // retained for JSON Schema projection
}

// Compiled is a resolved schema: one getter strategy per key, fixed at
// definition time and shared by every instance of the element type.
type Compiled struct {
	keys  []compiledKey
	attrs map[string]struct{}
	slots []string
	opts  CompileOptions
}

// SlotNames lists the slot placeholders, in schema declaration order, that
// every instance of this schema carries for its lifetime.
func (c *Compiled) SlotNames() []string {
	out := make([]string, len(c.slots))
	copy(out, c.slots)
	return out
}

// Keys lists schema key names in declaration order.
func (c *Compiled) Keys() []string {
	out := make([]string, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, k.name)
	}
	return out
}

// observesAttr reports whether mutations of the named attribute should
// schedule a flush.
func (c *Compiled) observesAttr(name string) bool {
	_, ok := c.attrs[name]
	return ok
}
