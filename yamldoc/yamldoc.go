// Package yamldoc loads element-type definitions and element trees from YAML.
// Definitions are walked as yaml.Node mappings so key declaration order in the
// file becomes key serialization order in the schema.
package yamldoc

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	jsonelem "github.com/reoring/jsonelem"
	"github.com/reoring/jsonelem/i18n"
)

// LoadDefinitions reads a YAML mapping of type name to key schema and
// registers each type, in file order, into reg.
//
//	geo-point:
//	  lat!: number
//	  lng!: { kind: number, strict: true }
//	track:
//	  $slot: strict
//	  name: string
//	  points: { kind: array, of: geo-point }
//
// A "!" suffix on a key name marks it required. "$slot" and "$enum" select
// per-definition policies.
func LoadDefinitions(r io.Reader, reg *jsonelem.Registry) error {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		return parseErr("", err)
	}
	doc := unwrapDocument(&root)
	if doc.Kind != yaml.MappingNode {
		return parseErr("", fmt.Errorf("top level must be a mapping of type names"))
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := doc.Content[i].Value
		keys, opts, err := decodeDefinition(doc.Content[i+1])
		if err != nil {
			return prefixIssues(err, name)
		}
		if _, err := reg.Define(name, keys, opts...); err != nil {
			return prefixIssues(err, name)
		}
	}
	return nil
}

func decodeDefinition(node *yaml.Node) ([]jsonelem.Key, []jsonelem.DefineOption, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nil, parseErr("", fmt.Errorf("definition body must be a mapping"))
	}
	var keys []jsonelem.Key
	var opts []jsonelem.DefineOption
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		val := node.Content[i+1]
		if strings.HasPrefix(name, "$") {
			opt, err := decodeDirective(name, val)
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, opt)
			continue
		}
		required := strings.HasSuffix(name, "!")
		name = strings.TrimSuffix(name, "!")
		in, reqFromBody, err := decodeInput(val)
		if err != nil {
			return nil, nil, prefixIssues(err, name)
		}
		keys = append(keys, jsonelem.Key{Name: name, Input: in, Required: required || reqFromBody})
	}
	return keys, opts, nil
}

func decodeDirective(name string, val *yaml.Node) (jsonelem.DefineOption, error) {
	switch name {
	case "$slot":
		switch val.Value {
		case "strict":
			return jsonelem.WithSlotPolicy(jsonelem.SlotStrict), nil
		case "permissive":
			return jsonelem.WithSlotPolicy(jsonelem.SlotPermissive), nil
		}
		return nil, parseErr("", fmt.Errorf("$slot must be strict or permissive, got %q", val.Value))
	case "$enum":
		switch val.Value {
		case "truthy":
			return jsonelem.WithEnumPolicy(jsonelem.EnumFirstTruthy), nil
		case "defined":
			return jsonelem.WithEnumPolicy(jsonelem.EnumFirstDefined), nil
		}
		return nil, parseErr("", fmt.Errorf("$enum must be truthy or defined, got %q", val.Value))
	default:
		return nil, parseErr("", fmt.Errorf("unknown directive %q", name))
	}
}

// decodeInput maps one key schema node onto the closed input variant set.
// Scalars are shorthand kinds; mappings spell kind and its parameters out.
func decodeInput(node *yaml.Node) (jsonelem.Input, bool, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		in, err := shorthandInput(node.Value)
		return in, false, err
	case yaml.MappingNode:
		return mappingInput(node)
	case yaml.SequenceNode:
		// bare sequence is oneOf shorthand
		alts, err := decodeAlts(node)
		if err != nil {
			return nil, false, err
		}
		return jsonelem.EnumInput{Alts: alts}, false, nil
	default:
		return nil, false, parseErr("", fmt.Errorf("unsupported key schema node"))
	}
}

func shorthandInput(kind string) (jsonelem.Input, error) {
	switch kind {
	case "string":
		return jsonelem.StringInput{}, nil
	case "number":
		return jsonelem.NumberInput{}, nil
	case "bool":
		return jsonelem.BoolInput{}, nil
	default:
		return nil, parseErr("", fmt.Errorf("unknown kind %q", kind))
	}
}

func mappingInput(node *yaml.Node) (jsonelem.Input, bool, error) {
	var (
		kind, of string
		strict   bool
		required bool
		value    *yaml.Node
		alts     *yaml.Node
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i].Value, node.Content[i+1]
		switch k {
		case "kind":
			kind = v.Value
		case "of":
			of = v.Value
		case "strict":
			strict = v.Value == "true"
		case "required":
			required = v.Value == "true"
		case "value":
			value = v
		case "oneOf":
			alts = v
		default:
			return nil, false, parseErr("", fmt.Errorf("unknown field %q in key schema", k))
		}
	}
	if alts != nil {
		as, err := decodeAlts(alts)
		if err != nil {
			return nil, false, err
		}
		return jsonelem.EnumInput{Alts: as}, required, nil
	}
	switch kind {
	case "string":
		return jsonelem.StringInput{}, required, nil
	case "number":
		return jsonelem.NumberInput{Strict: strict}, required, nil
	case "bool":
		return jsonelem.BoolInput{}, required, nil
	case "literal":
		var v any
		if value != nil {
			if err := value.Decode(&v); err != nil {
				return nil, false, parseErr("", err)
			}
		}
		return jsonelem.LiteralInput{Value: v}, required, nil
	case "object":
		if of == "" {
			return nil, false, parseErr("", fmt.Errorf("object kind needs of: <type name>"))
		}
		return jsonelem.ObjectRef{Name: of}, required, nil
	case "array":
		if of == "" {
			return nil, false, parseErr("", fmt.Errorf("array kind needs of: <type name>"))
		}
		return jsonelem.ArrayRef{Name: of}, required, nil
	default:
		return nil, false, parseErr("", fmt.Errorf("unknown kind %q", kind))
	}
}

func decodeAlts(node *yaml.Node) ([]jsonelem.Input, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, parseErr("", fmt.Errorf("oneOf must be a sequence"))
	}
	alts := make([]jsonelem.Input, 0, len(node.Content))
	for _, c := range node.Content {
		in, _, err := decodeInput(c)
		if err != nil {
			return nil, err
		}
		alts = append(alts, in)
	}
	return alts, nil
}

// document is the wire shape of an element tree. Attribute values are read
// from raw scalar nodes so numeric-looking content keeps its source text.
type document struct {
	Type  string
	Attrs map[string]string
	Slots map[string][]*document
}

// LoadDocument reads one element-tree YAML document and instantiates it on
// the loop:
//
//	type: track
//	attrs: { name: morning run }
//	slots:
//	  points:
//	    - { type: geo-point, attrs: { lat: "35.6", lng: "139.7" } }
//
// Slot names match the composite key they fill.
func LoadDocument(r io.Reader, reg *jsonelem.Registry, loop *jsonelem.Loop, opts ...jsonelem.ElementOption) (*jsonelem.Element, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		return nil, parseErr("", err)
	}
	doc, err := decodeDocument(unwrapDocument(&root))
	if err != nil {
		return nil, err
	}
	return build(doc, reg, loop, opts...)
}

func decodeDocument(node *yaml.Node) (*document, error) {
	if node.Kind != yaml.MappingNode {
		return nil, parseErr("", fmt.Errorf("element document must be a mapping"))
	}
	d := &document{Attrs: map[string]string{}, Slots: map[string][]*document{}}
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i].Value, node.Content[i+1]
		switch k {
		case "type":
			d.Type = v.Value
		case "attrs":
			if v.Kind != yaml.MappingNode {
				return nil, parseErr("", fmt.Errorf("attrs must be a mapping"))
			}
			for j := 0; j+1 < len(v.Content); j += 2 {
				d.Attrs[v.Content[j].Value] = v.Content[j+1].Value
			}
		case "slots":
			if v.Kind != yaml.MappingNode {
				return nil, parseErr("", fmt.Errorf("slots must be a mapping"))
			}
			for j := 0; j+1 < len(v.Content); j += 2 {
				kids, err := decodeChildren(v.Content[j+1])
				if err != nil {
					return nil, err
				}
				d.Slots[v.Content[j].Value] = kids
			}
		default:
			return nil, parseErr("", fmt.Errorf("unknown field %q in element document", k))
		}
	}
	if d.Type == "" {
		return nil, parseErr("", fmt.Errorf("element document needs type"))
	}
	return d, nil
}

func decodeChildren(node *yaml.Node) ([]*document, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, parseErr("", fmt.Errorf("slot content must be a sequence"))
	}
	out := make([]*document, 0, len(node.Content))
	for _, c := range node.Content {
		d, err := decodeDocument(c)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func build(d *document, reg *jsonelem.Registry, loop *jsonelem.Loop, opts ...jsonelem.ElementOption) (*jsonelem.Element, error) {
	def, ok := reg.Lookup(d.Type)
	if !ok {
		return nil, jsonelem.Issues{{Path: "", Code: jsonelem.CodeUnknownDefinition, Message: i18n.T(jsonelem.CodeUnknownDefinition, nil), Hint: d.Type}}
	}
	el := def.New(loop, opts...)
	for k, v := range d.Attrs {
		el.SetAttr(k, v)
	}
	for slotName, kids := range d.Slots {
		slot := el.Slot(slotName)
		if slot == nil {
			return nil, jsonelem.Issues{{Path: "", Code: jsonelem.CodeParseError, Message: i18n.T(jsonelem.CodeParseError, nil), Hint: fmt.Sprintf("type %s has no slot %q", d.Type, slotName)}}
		}
		for _, kd := range kids {
			child, err := build(kd, reg, loop)
			if err != nil {
				return nil, err
			}
			slot.Append(child)
		}
	}
	return el, nil
}

func unwrapDocument(n *yaml.Node) *yaml.Node {
	if n.Kind == yaml.DocumentNode && len(n.Content) > 0 {
		return n.Content[0]
	}
	return n
}

func parseErr(path string, err error) error {
	return jsonelem.Issues{{Path: path, Code: jsonelem.CodeParseError, Message: i18n.T(jsonelem.CodeParseError, nil), Cause: err}}
}

func prefixIssues(err error, segment string) error {
	iss, ok := jsonelem.AsIssues(err)
	if !ok {
		return err
	}
	out := make(jsonelem.Issues, 0, len(iss))
	for _, it := range iss {
		it.Path = "/" + segment + it.Path
		out = append(out, it)
	}
	return out
}
