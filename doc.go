package jsonelem

// Package jsonelem provides:
//
// - Declarative element definitions whose compiled schemas derive a JSON
//   document from attributes and slotted child elements
// - A stable error model via Issues (JSON Pointer, code, message)
// - Microtask-style change batching: one asynchronous notification per
//   coalesced batch of mutations, settling bottom-up through the tree
// - Opt-in structural diffing between snapshots (RFC 6902 add/replace/remove)
//
// Design policy:
// - Keep only public APIs in the root package; authoring helpers live in dsl/,
//   wire loading in yamldoc/, and the CLI in cmd/jsonelem.
// - Schemas compile once per definition, never per instance.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	reg := jsonelem.NewRegistry()
//	def := dsl.Element("geo-point").
//		Field("lat", dsl.Number()).
//		Field("lng", dsl.Number()).
//		Require("lat", "lng").
//		MustRegister(reg)
//
//	loop := jsonelem.NewLoop()
//	el := def.New(loop, jsonelem.WithDiff())
//	el.Observe(func(n jsonelem.Notification) { ... })
//	el.SetAttr("lat", "35.6")
//	el.SetAttr("lng", "139.7")
//	loop.Settle() // exactly one notification for both mutations
