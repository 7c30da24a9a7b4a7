package jsonelem

import (
	"context"
	"fmt"
	"strconv"

	"github.com/reoring/jsonelem/i18n"
)

// Compile resolves a schema description into one getter strategy per key.
// Classification happens here, once per element-type definition; assembly
// never re-inspects inputs. The precedence below matters because variants
// overlap in what they can express:
//
//  1. already-compiled getter (pass-through)
//  2. literal primitive
//  3. scalar coercion marker
//  4. nested object (direct or by-name reference)
//  5. nested array (direct or by-name reference)
//  6. custom transform (attribute-only vs attribute-plus-children)
//  7. enumeration of alternatives
//  8. anything else is a compile-time error naming the invalid input
func Compile(keys []Key, reg *Registry, opts CompileOptions) (*Compiled, error) {
	c := &Compiled{
		keys:  make([]compiledKey, 0, len(keys)),
		attrs: make(map[string]struct{}, len(keys)),
		opts:  opts,
	}
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k.Name]; dup {
			return nil, Issues{{Path: "/" + escapeToken(k.Name), Code: CodeInvalidSchemaInput, Message: i18n.T(CodeInvalidSchemaInput, nil), Hint: "key declared twice"}}
		}
		seen[k.Name] = struct{}{}
		ck, err := compileInput(k, reg, opts)
		if err != nil {
			return nil, rebaseIssues(err, k.Name)
		}
		c.keys = append(c.keys, ck)
		if ck.slotted {
			c.slots = append(c.slots, ck.name)
		}
		if readsAttr(k.Input) {
			c.attrs[k.Name] = struct{}{}
		}
	}
	return c, nil
}

func compileInput(k Key, reg *Registry, opts CompileOptions) (compiledKey, error) {
	ck := compiledKey{name: k.Name, required: k.Required, in: k.Input}
	switch in := k.Input.(type) {
	case GetterInput:
		ck.get, ck.slotted = in.Get, in.Slotted
	case LiteralInput:
		v, err := normalizeLiteral(in.Value)
		if err != nil {
			return ck, err
		}
		ck.get = func(context.Context, AttrValue, []Producer) (any, bool, error) { return v, true, nil }
	case BoolInput:
		ck.get = func(_ context.Context, attr AttrValue, _ []Producer) (any, bool, error) {
			return CoerceBoolean(attr.Ptr()), true, nil
		}
	case NumberInput:
		strict := in.Strict
		ck.get = func(_ context.Context, attr AttrValue, _ []Producer) (any, bool, error) {
			f, ok := CoerceNumber(attr.Ptr())
			if !ok {
				if strict && attr.Present {
					return nil, false, Issues{{Path: "/", Code: CodeNotANumber, Message: i18n.T(CodeNotANumber, nil), Hint: strconv.Quote(attr.Raw)}}
				}
				return nil, false, nil
			}
			return f, true, nil
		}
	case StringInput:
		ck.get = func(_ context.Context, attr AttrValue, _ []Producer) (any, bool, error) {
			s, ok := CoerceString(attr.Ptr())
			if !ok {
				return nil, false, nil
			}
			return s, true, nil
		}
	case ObjectInput:
		ck.slotted, ck.kind = true, kindObject
		ck.expects = staticExpect(in.Of)
		ck.get = objectGetter(ck.expects, opts.Slot)
	case ObjectRef:
		ck.slotted, ck.kind = true, kindObject
		ck.expects = lazyExpect(reg, in.Name)
		ck.get = objectGetter(ck.expects, opts.Slot)
	case ArrayInput:
		ck.slotted, ck.kind = true, kindArray
		ck.expects = staticExpect(in.Of)
		ck.get = arrayGetter(ck.expects, opts.Slot)
	case ArrayRef:
		ck.slotted, ck.kind = true, kindArray
		ck.expects = lazyExpect(reg, in.Name)
		ck.get = arrayGetter(ck.expects, opts.Slot)
	case AttrFunc:
		if in.Fn == nil {
			return ck, Issues{{Path: "/", Code: CodeInvalidSchemaInput, Message: i18n.T(CodeInvalidSchemaInput, nil), Hint: "nil transform"}}
		}
		fn := in.Fn
		ck.get = func(ctx context.Context, attr AttrValue, _ []Producer) (any, bool, error) {
			return fn(ctx, attr)
		}
	case SlotFunc:
		if in.Fn == nil {
			return ck, Issues{{Path: "/", Code: CodeInvalidSchemaInput, Message: i18n.T(CodeInvalidSchemaInput, nil), Hint: "nil transform"}}
		}
		ck.get, ck.slotted = in.Fn, true
	case EnumInput:
		if len(in.Alts) == 0 {
			return ck, Issues{{Path: "/", Code: CodeInvalidSchemaInput, Message: i18n.T(CodeInvalidSchemaInput, nil), Hint: "empty enumeration"}}
		}
		alts := make([]compiledKey, 0, len(in.Alts))
		for _, alt := range in.Alts {
			ak, err := compileInput(Key{Name: k.Name, Input: alt}, reg, opts)
			if err != nil {
				return ck, err
			}
			alts = append(alts, ak)
			ck.slotted = ck.slotted || ak.slotted
		}
		ck.alts = alts
		ck.get = enumGetter(alts, opts.Enum)
	case nil:
		return ck, Issues{{Path: "/", Code: CodeInvalidSchemaInput, Message: i18n.T(CodeInvalidSchemaInput, nil), Hint: "nil input"}}
	default:
		return ck, Issues{{Path: "/", Code: CodeInvalidSchemaInput, Message: i18n.T(CodeInvalidSchemaInput, nil), Hint: fmt.Sprintf("unrecognized input %T", k.Input)}}
	}
	return ck, nil
}

// normalizeLiteral admits only JSON scalar literals, widening Go numeric
// kinds to float64 for canonical output.
func normalizeLiteral(v any) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int8:
		return float64(t), nil
	case int16:
		return float64(t), nil
	case int32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case uint:
		return float64(t), nil
	case uint8:
		return float64(t), nil
	case uint16:
		return float64(t), nil
	case uint32:
		return float64(t), nil
	case uint64:
		return float64(t), nil
	default:
		return nil, Issues{{Path: "/", Code: CodeInvalidSchemaInput, Message: i18n.T(CodeInvalidSchemaInput, nil), Hint: fmt.Sprintf("literal %T is not a JSON scalar", v)}}
	}
}

func staticExpect(def *Definition) func() (*Definition, error) {
	if def == nil {
		return nil
	}
	return func() (*Definition, error) { return def, nil }
}

// lazyExpect defers registry lookup to read time so definitions may reference
// types registered later, including themselves.
func lazyExpect(reg *Registry, name string) func() (*Definition, error) {
	return func() (*Definition, error) {
		if reg != nil {
			if def, ok := reg.Lookup(name); ok {
				return def, nil
			}
		}
		return nil, Issues{{Path: "/", Code: CodeUnknownDefinition, Message: i18n.T(CodeUnknownDefinition, nil), Hint: name}}
	}
}

func resolveExpected(expects func() (*Definition, error)) (*Definition, error) {
	if expects == nil {
		return nil, nil
	}
	return expects()
}

func conforms(p Producer, def *Definition) bool {
	if def == nil {
		return true
	}
	el, ok := p.(*Element)
	return ok && el.def == def
}

// conformingChildren filters slotted children down to those matching the
// expected definition. SlotStrict raises slot_type on the first mismatch
// instead of excluding it.
func conformingChildren(slotted []Producer, def *Definition, pol SlotPolicy) ([]Producer, error) {
	out := make([]Producer, 0, len(slotted))
	for _, p := range slotted {
		if conforms(p, def) {
			out = append(out, p)
			continue
		}
		if pol == SlotStrict {
			got := fmt.Sprintf("%T", p)
			if el, ok := p.(*Element); ok {
				got = el.def.Name()
			}
			return nil, Issues{{Path: "/", Code: CodeSlotType, Message: i18n.T(CodeSlotType, nil), Hint: fmt.Sprintf("expected %s, got %s", def.Name(), got)}}
		}
	}
	return out, nil
}

func objectGetter(expects func() (*Definition, error), pol SlotPolicy) Getter {
	return func(ctx context.Context, _ AttrValue, slotted []Producer) (any, bool, error) {
		def, err := resolveExpected(expects)
		if err != nil {
			return nil, false, err
		}
		kids, err := conformingChildren(slotted, def, pol)
		if err != nil {
			return nil, false, err
		}
		if len(kids) == 0 {
			return nil, false, nil
		}
		v, err := kids[0].JSON(ctx)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	}
}

func arrayGetter(expects func() (*Definition, error), pol SlotPolicy) Getter {
	return func(ctx context.Context, _ AttrValue, slotted []Producer) (any, bool, error) {
		def, err := resolveExpected(expects)
		if err != nil {
			return nil, false, err
		}
		kids, err := conformingChildren(slotted, def, pol)
		if err != nil {
			return nil, false, err
		}
		out := make([]any, 0, len(kids))
		for i, kid := range kids {
			v, err := kid.JSON(ctx)
			if err != nil {
				return nil, false, rebaseIssues(err, strconv.Itoa(i))
			}
			out = append(out, v)
		}
		return out, true, nil
	}
}

// enumGetter evaluates alternatives strictly in authoring order. Errors from
// an alternative propagate; they are not treated as "no match".
func enumGetter(alts []compiledKey, pol EnumPolicy) Getter {
	return func(ctx context.Context, attr AttrValue, slotted []Producer) (any, bool, error) {
		for _, alt := range alts {
			var kids []Producer
			if alt.slotted {
				kids = slotted
			}
			v, ok, err := alt.get(ctx, attr, kids)
			if err != nil {
				return nil, false, err
			}
			if !ok {
				continue
			}
			if pol == EnumFirstTruthy && !isTruthy(v) {
				continue
			}
			return v, true, nil
		}
		return nil, false, nil
	}
}

// isTruthy mirrors scripting-language truthiness for the EnumFirstTruthy
// variant: null, false, 0 and "" do not match; containers always do.
func isTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// readsAttr reports whether an input variant may consult the host attribute
// of its key; only such keys schedule flushes on attribute mutation.
func readsAttr(in Input) bool {
	switch t := in.(type) {
	case BoolInput, NumberInput, StringInput, AttrFunc, SlotFunc, GetterInput:
		return true
	case EnumInput:
		for _, alt := range t.Alts {
			if readsAttr(alt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
