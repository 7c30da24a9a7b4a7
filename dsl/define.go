package dsl

import (
	jsonelem "github.com/reoring/jsonelem"
)

// ElementBuilder accumulates schema keys and compilation policies for one
// element type. Terminal methods are Register and MustRegister.
type ElementBuilder struct {
	name string
	keys []jsonelem.Key
	opts []jsonelem.DefineOption
}

// Element starts a definition under the given type name.
func Element(name string) *ElementBuilder {
	return &ElementBuilder{name: name}
}

// Field declares a schema key. Keys serialize in declaration order.
func (b *ElementBuilder) Field(name string, in jsonelem.Input) *ElementBuilder {
	b.keys = append(b.keys, jsonelem.Key{Name: name, Input: in})
	return b
}

// Require marks previously declared keys required: resolving one to undefined
// aborts assembly with a required issue.
func (b *ElementBuilder) Require(names ...string) *ElementBuilder {
	for _, name := range names {
		for i := range b.keys {
			if b.keys[i].Name == name {
				b.keys[i].Required = true
			}
		}
	}
	return b
}

// SlotStrict raises slot_type on non-conforming slotted children instead of
// excluding them.
func (b *ElementBuilder) SlotStrict() *ElementBuilder {
	b.opts = append(b.opts, jsonelem.WithSlotPolicy(jsonelem.SlotStrict))
	return b
}

// SlotPermissive restores the default child-exclusion policy.
func (b *ElementBuilder) SlotPermissive() *ElementBuilder {
	b.opts = append(b.opts, jsonelem.WithSlotPolicy(jsonelem.SlotPermissive))
	return b
}

// EnumTruthy makes enumerations skip defined-but-falsy alternatives.
func (b *ElementBuilder) EnumTruthy() *ElementBuilder {
	b.opts = append(b.opts, jsonelem.WithEnumPolicy(jsonelem.EnumFirstTruthy))
	return b
}

// EnumDefined restores the default first-defined enumeration policy.
func (b *ElementBuilder) EnumDefined() *ElementBuilder {
	b.opts = append(b.opts, jsonelem.WithEnumPolicy(jsonelem.EnumFirstDefined))
	return b
}

// Register compiles the accumulated keys into the registry.
func (b *ElementBuilder) Register(reg *jsonelem.Registry) (*jsonelem.Definition, error) {
	return reg.Define(b.name, b.keys, b.opts...)
}

// MustRegister is Register, panicking on compile errors. Intended for
// definitions authored in code, where an invalid schema is a programming
// error.
func (b *ElementBuilder) MustRegister(reg *jsonelem.Registry) *jsonelem.Definition {
	def, err := b.Register(reg)
	if err != nil {
		panic(err)
	}
	return def
}
