package jsonelem

import (
	"bytes"
	"context"

	json "github.com/goccy/go-json"

	"github.com/reoring/jsonelem/i18n"
)

// Element is a live instance of a Definition. Its state is exactly: the raw
// attribute map, one slot placeholder per composite schema key (fixed at
// construction, derived solely from the compiled schema), the pending-flush
// flag, and the previous JSON snapshot when diffing is enabled.
type Element struct {
	def  *Definition
	loop *Loop

	attrs map[string]string
	slots map[string]*Slot

	parent    *Element
	observers []func(Notification)

	pending     bool
	diffing     bool
	snapshot    any
	hasSnapshot bool
}

type ElementOption func(*Element)

// WithDiff opts this instance into snapshot tracking: its notifications carry
// RFC 6902 patches. Non-diffing instances retain no snapshot.
func WithDiff() ElementOption {
	return func(e *Element) { e.diffing = true }
}

// WithAttrs seeds initial attributes without scheduling a flush.
func WithAttrs(attrs map[string]string) ElementOption {
	return func(e *Element) {
		for k, v := range attrs {
			e.attrs[k] = v
		}
	}
}

// New constructs an element on the given loop. Slot placeholders for every
// composite key exist from here on and are never recreated.
func (d *Definition) New(loop *Loop, opts ...ElementOption) *Element {
	e := &Element{
		def:   d,
		loop:  loop,
		attrs: make(map[string]string),
		slots: make(map[string]*Slot, len(d.compiled.slots)),
	}
	for _, name := range d.compiled.slots {
		e.slots[name] = &Slot{name: name, owner: e}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Element) Definition() *Definition { return e.def }

// Attr reads a raw attribute.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// SetAttr writes an attribute. Mutating an attribute some schema key observes
// moves the element to PendingFlush; unobserved attributes are stored without
// scheduling.
func (e *Element) SetAttr(name, value string) {
	if old, ok := e.attrs[name]; ok && old == value {
		return
	}
	e.attrs[name] = value
	if e.def.compiled.observesAttr(name) {
		e.schedule()
	}
}

// RemoveAttr deletes an attribute, scheduling like SetAttr.
func (e *Element) RemoveAttr(name string) {
	if _, ok := e.attrs[name]; !ok {
		return
	}
	delete(e.attrs, name)
	if e.def.compiled.observesAttr(name) {
		e.schedule()
	}
}

// Slot returns the placeholder for a composite key, or nil when the compiled
// schema creates none for that key. Slots are named after their schema key.
func (e *Element) Slot(name string) *Slot { return e.slots[name] }

func (e *Element) attrValue(name string) AttrValue {
	raw, ok := e.attrs[name]
	return AttrValue{Raw: raw, Present: ok}
}

func (e *Element) slotChildren(name string) []Producer {
	s := e.slots[name]
	if s == nil {
		return nil
	}
	return s.Children()
}

// JSON assembles the element's current value: each compiled key in schema
// declaration order, composite keys resolving slotted children first.
// Undefined results omit the key; a required key resolving undefined aborts
// with a required issue at /key. The result is a fresh value every call and
// is bit-identical across calls while the tree is unchanged.
func (e *Element) JSON(ctx context.Context) (any, error) {
	out := make(map[string]any, len(e.def.compiled.keys))
	for _, k := range e.def.compiled.keys {
		var slotted []Producer
		if k.slotted {
			slotted = e.slotChildren(k.name)
		}
		v, ok, err := k.get(ctx, e.attrValue(k.name), slotted)
		if err != nil {
			return nil, rebaseIssues(err, k.name)
		}
		if !ok {
			if k.required {
				return nil, requiredIssue(k.name)
			}
			continue
		}
		out[k.name] = v
	}
	return out, nil
}

func requiredIssue(key string) error {
	return Issues{{Path: "/" + escapeToken(key), Code: CodeRequired, Message: i18n.T(CodeRequired, nil), Hint: key}}
}

// MarshalJSON emits object keys in schema declaration order, recursively for
// element-backed composites. Values produced by custom transforms are
// serialized canonically.
func (e *Element) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := e.encodeJSON(context.Background(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *Element) encodeJSON(ctx context.Context, buf *bytes.Buffer) error {
	buf.WriteByte('{')
	first := true
	writeKey := func(name string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		return nil
	}
	writeValue := func(p Producer) error {
		if el, ok := p.(*Element); ok {
			return el.encodeJSON(ctx, buf)
		}
		v, err := p.JSON(ctx)
		if err != nil {
			return err
		}
		vb, err := json.Marshal(v)
		if err != nil {
			return err
		}
		buf.Write(vb)
		return nil
	}
	for _, k := range e.def.compiled.keys {
		switch k.kind {
		case kindObject, kindArray:
			def, err := resolveExpected(k.expects)
			if err != nil {
				return rebaseIssues(err, k.name)
			}
			kids, err := conformingChildren(e.slotChildren(k.name), def, e.def.compiled.opts.Slot)
			if err != nil {
				return rebaseIssues(err, k.name)
			}
			if k.kind == kindObject {
				if len(kids) == 0 {
					if k.required {
						return requiredIssue(k.name)
					}
					continue
				}
				if err := writeKey(k.name); err != nil {
					return err
				}
				if err := writeValue(kids[0]); err != nil {
					return rebaseIssues(err, k.name)
				}
				continue
			}
			if err := writeKey(k.name); err != nil {
				return err
			}
			buf.WriteByte('[')
			for i, kid := range kids {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := writeValue(kid); err != nil {
					return rebaseIssues(err, k.name)
				}
			}
			buf.WriteByte(']')
		default:
			if len(k.alts) > 0 {
				wrote, err := e.writeEnum(ctx, k, buf, writeKey, writeValue)
				if err != nil {
					return rebaseIssues(err, k.name)
				}
				if !wrote {
					if k.required {
						return requiredIssue(k.name)
					}
				}
				continue
			}
			var slotted []Producer
			if k.slotted {
				slotted = e.slotChildren(k.name)
			}
			v, ok, err := k.get(ctx, e.attrValue(k.name), slotted)
			if err != nil {
				return rebaseIssues(err, k.name)
			}
			if !ok {
				if k.required {
					return requiredIssue(k.name)
				}
				continue
			}
			if err := writeKey(k.name); err != nil {
				return err
			}
			vb, err := json.Marshal(v)
			if err != nil {
				return err
			}
			buf.Write(vb)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeEnum picks the winning alternative exactly like the compiled enum
// getter, but keeps composite winners as child elements so their keys encode
// in schema declaration order. Reports whether a value was written.
func (e *Element) writeEnum(ctx context.Context, k compiledKey, buf *bytes.Buffer, writeKey func(string) error, writeValue func(Producer) error) (bool, error) {
	for _, alt := range k.alts {
		switch alt.kind {
		case kindObject:
			def, err := resolveExpected(alt.expects)
			if err != nil {
				return false, err
			}
			kids, err := conformingChildren(e.slotChildren(k.name), def, e.def.compiled.opts.Slot)
			if err != nil {
				return false, err
			}
			if len(kids) == 0 {
				continue
			}
			if err := writeKey(k.name); err != nil {
				return false, err
			}
			return true, writeValue(kids[0])
		case kindArray:
			def, err := resolveExpected(alt.expects)
			if err != nil {
				return false, err
			}
			kids, err := conformingChildren(e.slotChildren(k.name), def, e.def.compiled.opts.Slot)
			if err != nil {
				return false, err
			}
			// array alternatives are always defined, and containers always
			// count as truthy
			if err := writeKey(k.name); err != nil {
				return false, err
			}
			buf.WriteByte('[')
			for i, kid := range kids {
				if i > 0 {
					buf.WriteByte(',')
				}
				if err := writeValue(kid); err != nil {
					return false, err
				}
			}
			buf.WriteByte(']')
			return true, nil
		default:
			var slotted []Producer
			if alt.slotted {
				slotted = e.slotChildren(k.name)
			}
			v, ok, err := alt.get(ctx, e.attrValue(k.name), slotted)
			if err != nil {
				return false, err
			}
			if !ok {
				continue
			}
			if e.def.compiled.opts.Enum == EnumFirstTruthy && !isTruthy(v) {
				continue
			}
			if err := writeKey(k.name); err != nil {
				return false, err
			}
			vb, err := json.Marshal(v)
			if err != nil {
				return false, err
			}
			buf.Write(vb)
			return true, nil
		}
	}
	return false, nil
}

// Slot is a named containment point: the ordered children currently assigned
// to one composite schema key. Any mutation moves the owner to PendingFlush.
type Slot struct {
	name     string
	owner    *Element
	children []Producer
}

func (s *Slot) Name() string { return s.name }

func (s *Slot) Len() int { return len(s.children) }

// Children returns the assigned children in document order. The slice is a
// copy; mutating it does not touch the slot.
func (s *Slot) Children() []Producer {
	out := make([]Producer, len(s.children))
	copy(out, s.children)
	return out
}

// Append assigns a child at the end of the slot. An appended element becomes
// owned by (and reports to) the slot's owner, and is now connected: both it
// and the owner move to PendingFlush.
func (s *Slot) Append(p Producer) {
	if p == nil {
		return
	}
	s.children = append(s.children, p)
	s.adopt(p)
	s.owner.schedule()
}

// Insert assigns a child at position i, clamped to the valid range.
func (s *Slot) Insert(i int, p Producer) {
	if p == nil {
		return
	}
	if i < 0 {
		i = 0
	}
	if i > len(s.children) {
		i = len(s.children)
	}
	s.children = append(s.children, nil)
	copy(s.children[i+1:], s.children[i:])
	s.children[i] = p
	s.adopt(p)
	s.owner.schedule()
}

// Remove unassigns the first occurrence of p and reports whether it was
// present.
func (s *Slot) Remove(p Producer) bool {
	for i, c := range s.children {
		if c == p {
			s.RemoveAt(i)
			return true
		}
	}
	return false
}

// RemoveAt unassigns the child at index i.
func (s *Slot) RemoveAt(i int) {
	if i < 0 || i >= len(s.children) {
		return
	}
	c := s.children[i]
	s.children = append(s.children[:i], s.children[i+1:]...)
	if el, ok := c.(*Element); ok && el.parent == s.owner {
		el.parent = nil
	}
	s.owner.schedule()
}

// Clear unassigns every child.
func (s *Slot) Clear() {
	for _, c := range s.children {
		if el, ok := c.(*Element); ok && el.parent == s.owner {
			el.parent = nil
		}
	}
	s.children = s.children[:0]
	s.owner.schedule()
}

func (s *Slot) adopt(p Producer) {
	if el, ok := p.(*Element); ok {
		el.parent = s.owner
		el.connect()
	}
}
