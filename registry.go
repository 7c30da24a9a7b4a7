package jsonelem

import (
	"io"
	"log/slog"

	"github.com/reoring/jsonelem/i18n"
	js "github.com/reoring/jsonelem/jsonschema"
)

// Registry holds element-type definitions. It replaces ambient per-type
// globals with an explicit object: construct it at startup, load definitions,
// then treat it as immutable.
type Registry struct {
	logger *slog.Logger
	defs   map[string]*Definition
	order  []string
}

type RegistryOption func(*Registry)

// WithLogger injects a structured logger; without one the registry logs to a
// discard handler.
func WithLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		defs:   make(map[string]*Definition),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefineOption tweaks compilation policy for one definition.
type DefineOption func(*CompileOptions)

func WithSlotPolicy(p SlotPolicy) DefineOption {
	return func(o *CompileOptions) { o.Slot = p }
}

func WithEnumPolicy(p EnumPolicy) DefineOption {
	return func(o *CompileOptions) { o.Enum = p }
}

// Define compiles a schema description and registers it under name. Invalid
// schema input is fatal here, at type-definition time, never deferred to
// instance construction. Defining the same name twice is non-fatal: the
// attempt is logged and ignored, and the existing definition is returned.
func (r *Registry) Define(name string, keys []Key, opts ...DefineOption) (*Definition, error) {
	if existing, ok := r.defs[name]; ok {
		r.logger.Warn("duplicate element definition ignored", "name", name)
		return existing, nil
	}
	var co CompileOptions
	for _, opt := range opts {
		opt(&co)
	}
	compiled, err := Compile(keys, r, co)
	if err != nil {
		return nil, err
	}
	def := &Definition{name: name, reg: r, compiled: compiled}
	r.defs[name] = def
	r.order = append(r.order, name)
	return def, nil
}

// MustDefine is like Define but panics on error.
func (r *Registry) MustDefine(name string, keys []Key, opts ...DefineOption) *Definition {
	def, err := r.Define(name, keys, opts...)
	if err != nil {
		panic(err)
	}
	return def
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// Names lists registered definition names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// JSONSchema projects the named root definition together with a $defs bundle
// covering every registered type, so by-name references resolve.
func (r *Registry) JSONSchema(root string) (*js.Schema, error) {
	def, ok := r.defs[root]
	if !ok {
		return nil, Issues{{Path: "/", Code: CodeUnknownDefinition, Message: i18n.T(CodeUnknownDefinition, nil), Hint: root}}
	}
	out, err := def.JSONSchema()
	if err != nil {
		return nil, err
	}
	out.Defs = make(map[string]*js.Schema, len(r.order))
	for _, name := range r.order {
		ds, err := r.defs[name].JSONSchema()
		if err != nil {
			return nil, err
		}
		out.Defs[name] = ds
	}
	return out, nil
}

// Definition is a registered element type: a name plus its compiled schema.
type Definition struct {
	name     string
	reg      *Registry
	compiled *Compiled
}

func (d *Definition) Name() string { return d.name }

// Compiled exposes the resolved schema (slot layout, key order).
func (d *Definition) Compiled() *Compiled { return d.compiled }

// JSONSchema projects this definition one level deep; nested element types
// appear as $ref entries resolved by Registry.JSONSchema.
func (d *Definition) JSONSchema() (*js.Schema, error) {
	props := make(map[string]*js.Schema, len(d.compiled.keys))
	var required []string
	for _, k := range d.compiled.keys {
		props[k.name] = projectInput(k.in)
		if k.required {
			required = append(required, k.name)
		}
	}
	return &js.Schema{Type: "object", Properties: props, Required: required}, nil
}

func projectInput(in Input) *js.Schema {
	switch t := in.(type) {
	case LiteralInput:
		return &js.Schema{Const: t.Value}
	case BoolInput:
		return &js.Schema{Type: "boolean"}
	case NumberInput:
		return &js.Schema{Type: "number"}
	case StringInput:
		return &js.Schema{Type: "string"}
	case ObjectInput:
		if t.Of != nil {
			return &js.Schema{Ref: "#/$defs/" + t.Of.Name()}
		}
		return &js.Schema{Type: "object"}
	case ObjectRef:
		return &js.Schema{Ref: "#/$defs/" + t.Name}
	case ArrayInput:
		items := &js.Schema{Type: "object"}
		if t.Of != nil {
			items = &js.Schema{Ref: "#/$defs/" + t.Of.Name()}
		}
		return &js.Schema{Type: "array", Items: items}
	case ArrayRef:
		return &js.Schema{Type: "array", Items: &js.Schema{Ref: "#/$defs/" + t.Name}}
	case EnumInput:
		alts := make([]*js.Schema, 0, len(t.Alts))
		for _, alt := range t.Alts {
			alts = append(alts, projectInput(alt))
		}
		return &js.Schema{OneOf: alts}
	default:
		// custom transforms and pass-through getters are opaque
		return &js.Schema{}
	}
}
