// Package dsl provides fluent authoring helpers over the core schema inputs.
// It is sugar only: everything here lowers to jsonelem.Key values and the
// closed Input variant set.
package dsl

import (
	"context"

	jsonelem "github.com/reoring/jsonelem"
)

// Literal yields a fixed JSON scalar regardless of element state.
func Literal(v any) jsonelem.Input { return jsonelem.LiteralInput{Value: v} }

// Bool coerces the host attribute by presence: defined on the element means
// true.
func Bool() jsonelem.Input { return jsonelem.BoolInput{} }

// Number parses the host attribute as a float; unparsable content leaves the
// key undefined.
func Number() jsonelem.Input { return jsonelem.NumberInput{} }

// NumberStrict is Number, but a present unparsable attribute raises a
// not_a_number issue instead of going undefined.
func NumberStrict() jsonelem.Input { return jsonelem.NumberInput{Strict: true} }

// String passes the host attribute through; absent or empty goes undefined.
func String() jsonelem.Input { return jsonelem.StringInput{} }

// Object embeds the first conforming slotted child of the named element type.
// The reference resolves lazily at read time, so self- and forward-references
// work.
func Object(name string) jsonelem.Input { return jsonelem.ObjectRef{Name: name} }

// ObjectOf is Object with an already-registered definition.
func ObjectOf(def *jsonelem.Definition) jsonelem.Input { return jsonelem.ObjectInput{Of: def} }

// Array embeds every conforming slotted child of the named element type, in
// document order. The key is always defined, possibly as an empty array.
func Array(name string) jsonelem.Input { return jsonelem.ArrayRef{Name: name} }

// ArrayOf is Array with an already-registered definition.
func ArrayOf(def *jsonelem.Definition) jsonelem.Input { return jsonelem.ArrayInput{Of: def} }

// OneOf tries alternatives in authoring order; the first match (per the
// definition's enum policy) wins.
func OneOf(alts ...jsonelem.Input) jsonelem.Input { return jsonelem.EnumInput{Alts: alts} }

// FromAttr installs a custom transform over the host attribute.
func FromAttr(fn func(ctx context.Context, attr jsonelem.AttrValue) (any, bool, error)) jsonelem.Input {
	return jsonelem.AttrFunc{Fn: fn}
}

// FromSlot installs a custom transform over the host attribute and the
// slotted children.
func FromSlot(fn jsonelem.Getter) jsonelem.Input { return jsonelem.SlotFunc{Fn: fn} }

// Getter passes an already-built getter through compilation unchanged.
func Getter(g jsonelem.Getter, slotted bool) jsonelem.Input {
	return jsonelem.GetterInput{Get: g, Slotted: slotted}
}
