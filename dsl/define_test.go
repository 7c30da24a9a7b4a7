package dsl_test

import (
	"context"
	"testing"

	jsonelem "github.com/reoring/jsonelem"
	"github.com/reoring/jsonelem/dsl"
)

func TestElementBuilder_RegistersCompiledType(t *testing.T) {
	reg := jsonelem.NewRegistry()
	point := dsl.Element("geo-point").
		Field("lat", dsl.Number()).
		Field("lng", dsl.Number()).
		Field("label", dsl.String()).
		Require("lat", "lng").
		MustRegister(reg)

	if point.Name() != "geo-point" {
		t.Fatalf("name = %q", point.Name())
	}
	if _, ok := reg.Lookup("geo-point"); !ok {
		t.Fatalf("builder must register into the registry")
	}

	loop := jsonelem.NewLoop()
	el := point.New(loop)
	el.SetAttr("lat", "1")
	if _, err := el.JSON(context.Background()); err == nil {
		t.Fatalf("Require must mark keys required")
	}
	el.SetAttr("lng", "2")
	v, err := el.JSON(context.Background())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	obj := v.(map[string]any)
	if obj["lat"] != float64(1) || obj["lng"] != float64(2) {
		t.Fatalf("got %#v", obj)
	}
}

func TestElementBuilder_PolicyToggles(t *testing.T) {
	reg := jsonelem.NewRegistry()
	leaf := dsl.Element("leaf").Field("v", dsl.String()).MustRegister(reg)
	strict := dsl.Element("strict-host").
		Field("items", dsl.ArrayOf(leaf)).
		SlotStrict().
		MustRegister(reg)
	other := dsl.Element("other").Field("v", dsl.String()).MustRegister(reg)

	loop := jsonelem.NewLoop()
	el := strict.New(loop)
	el.Slot("items").Append(other.New(loop))
	if _, err := el.JSON(context.Background()); err == nil {
		t.Fatalf("SlotStrict must surface mismatches")
	}

	truthy := dsl.Element("pick").
		Field("v", dsl.OneOf(dsl.Number(), dsl.Literal("fallback"))).
		EnumTruthy().
		MustRegister(reg)
	el2 := truthy.New(loop)
	el2.SetAttr("v", "0")
	v, err := el2.JSON(context.Background())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	if v.(map[string]any)["v"] != "fallback" {
		t.Fatalf("EnumTruthy not applied: %#v", v)
	}
}

func TestElementBuilder_CustomInputs(t *testing.T) {
	reg := jsonelem.NewRegistry()
	def := dsl.Element("custom").
		Field("flag", dsl.Bool()).
		Field("echo", dsl.FromAttr(func(_ context.Context, attr jsonelem.AttrValue) (any, bool, error) {
			return attr.Raw, attr.Present, nil
		})).
		Field("n", dsl.FromSlot(func(_ context.Context, _ jsonelem.AttrValue, slotted []jsonelem.Producer) (any, bool, error) {
			return float64(len(slotted)), true, nil
		})).
		MustRegister(reg)

	el := def.New(jsonelem.NewLoop())
	el.SetAttr("flag", "")
	el.SetAttr("echo", "hi")
	v, err := el.JSON(context.Background())
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	obj := v.(map[string]any)
	if obj["flag"] != true || obj["echo"] != "hi" || obj["n"] != float64(0) {
		t.Fatalf("got %#v", obj)
	}
}

func TestElementBuilder_RegisterReportsCompileErrors(t *testing.T) {
	reg := jsonelem.NewRegistry()
	_, err := dsl.Element("broken").
		Field("v", dsl.OneOf()).
		Register(reg)
	if err == nil {
		t.Fatalf("empty OneOf must fail compilation")
	}
	if iss, ok := jsonelem.AsIssues(err); !ok || iss[0].Code != jsonelem.CodeInvalidSchemaInput {
		t.Fatalf("expected invalid_schema_input, got %v", err)
	}
}
