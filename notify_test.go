package jsonelem_test

import (
	"testing"

	jsonelem "github.com/reoring/jsonelem"
)

func trackReg(t *testing.T) (*jsonelem.Registry, *jsonelem.Definition, *jsonelem.Definition) {
	t.Helper()
	reg := jsonelem.NewRegistry()
	point := reg.MustDefine("point", []jsonelem.Key{
		{Name: "lat", Input: jsonelem.NumberInput{}},
		{Name: "lng", Input: jsonelem.NumberInput{}},
	})
	track := reg.MustDefine("track", []jsonelem.Key{
		{Name: "name", Input: jsonelem.StringInput{}},
		{Name: "points", Input: jsonelem.ArrayInput{Of: point}},
	})
	return reg, track, point
}

func TestNotify_MutationsCoalesceIntoOneNotification(t *testing.T) {
	_, track, point := trackReg(t)
	loop := jsonelem.NewLoop()
	el := track.New(loop)
	fired := 0
	el.Observe(func(jsonelem.Notification) { fired++ })

	el.SetAttr("name", "a")
	el.SetAttr("name", "b")
	el.SetAttr("name", "c")
	el.Slot("points").Append(point.New(loop))
	if fired != 0 {
		t.Fatalf("notification must be asynchronous, fired %d times synchronously", fired)
	}
	loop.Turn()
	if fired != 1 {
		t.Fatalf("batched mutations must yield exactly one notification, got %d", fired)
	}
}

func TestNotify_IdleAgainAfterFlush(t *testing.T) {
	_, track, _ := trackReg(t)
	loop := jsonelem.NewLoop()
	el := track.New(loop)
	el.SetAttr("name", "x")
	if !el.PendingFlush() {
		t.Fatalf("observed mutation must move the element to pending")
	}
	loop.Settle()
	if el.PendingFlush() {
		t.Fatalf("flush must return the element to idle")
	}
	fired := 0
	el.Observe(func(jsonelem.Notification) { fired++ })
	el.SetAttr("name", "y")
	loop.Settle()
	if fired != 1 {
		t.Fatalf("a new batch must notify again, got %d", fired)
	}
}

func TestNotify_UnobservedAttrDoesNotSchedule(t *testing.T) {
	_, track, _ := trackReg(t)
	loop := jsonelem.NewLoop()
	el := track.New(loop)
	el.SetAttr("data-color", "red") // no schema key reads it
	if el.PendingFlush() || loop.Pending() != 0 {
		t.Fatalf("unobserved attribute must not schedule a flush")
	}
	if got, ok := el.Attr("data-color"); !ok || got != "red" {
		t.Fatalf("unobserved attribute must still be stored")
	}
}

func TestNotify_SettlesOneLevelPerTurn(t *testing.T) {
	_, track, point := trackReg(t)
	loop := jsonelem.NewLoop()
	root := track.New(loop)
	kid := point.New(loop)
	root.Slot("points").Append(kid)
	loop.Settle()

	var order []string
	root.Observe(func(jsonelem.Notification) { order = append(order, "root") })
	kid.Observe(func(jsonelem.Notification) { order = append(order, "kid") })

	kid.SetAttr("lat", "1")
	loop.Turn() // child flushes, parent becomes pending
	if len(order) != 1 || order[0] != "kid" {
		t.Fatalf("turn 1 must flush only the child, got %v", order)
	}
	if !root.PendingFlush() {
		t.Fatalf("child flush must schedule the owner")
	}
	loop.Turn()
	if len(order) != 2 || order[1] != "root" {
		t.Fatalf("turn 2 must flush the owner, got %v", order)
	}
}

func TestNotify_RemovalNotifiesFormerOwner(t *testing.T) {
	_, track, point := trackReg(t)
	loop := jsonelem.NewLoop()
	root := track.New(loop)
	kid := point.New(loop)
	root.Slot("points").Append(kid)
	loop.Settle()

	fired := 0
	root.Observe(func(jsonelem.Notification) { fired++ })
	if !root.Slot("points").Remove(kid) {
		t.Fatalf("child should have been present")
	}
	loop.Settle()
	if fired != 1 {
		t.Fatalf("removal must notify the former owner once, got %d", fired)
	}

	// the detached child no longer reports upward
	fired = 0
	kid.SetAttr("lat", "9")
	loop.Settle()
	if fired != 0 {
		t.Fatalf("detached child must not schedule its former owner")
	}
}

func TestNotify_DiffingCarriesPatches(t *testing.T) {
	_, track, point := trackReg(t)
	loop := jsonelem.NewLoop()
	el := track.New(loop, jsonelem.WithDiff())

	var last jsonelem.Notification
	el.Observe(func(n jsonelem.Notification) { last = n })

	el.Connect()
	loop.Settle()
	// first flush: everything is new relative to the empty snapshot
	if len(last.Patches) != 1 || last.Patches[0].Op != jsonelem.OpReplace || last.Patches[0].Path != "" {
		t.Fatalf("first flush must replace the root, got %+v", last.Patches)
	}

	el.SetAttr("name", "run")
	loop.Settle()
	if len(last.Patches) != 1 || last.Patches[0].Op != jsonelem.OpAdd || last.Patches[0].Path != "/name" || last.Patches[0].Value != "run" {
		t.Fatalf("expected add /name, got %+v", last.Patches)
	}

	kid := point.New(loop)
	kid.SetAttr("lat", "35.6")
	el.Slot("points").Append(kid)
	loop.Settle()
	if len(last.Patches) != 1 || last.Patches[0].Op != jsonelem.OpAdd || last.Patches[0].Path != "/points/0" {
		t.Fatalf("expected add /points/0, got %+v", last.Patches)
	}

	// same-value writes are absorbed without scheduling
	el.SetAttr("name", "run")
	if loop.Pending() != 0 {
		t.Fatalf("unchanged attribute write must not schedule a flush")
	}
}

func TestNotify_NonDiffingHasNoPatches(t *testing.T) {
	_, track, _ := trackReg(t)
	loop := jsonelem.NewLoop()
	el := track.New(loop)
	var last jsonelem.Notification
	el.Observe(func(n jsonelem.Notification) { last = n })
	el.SetAttr("name", "x")
	loop.Settle()
	if last.Patches != nil {
		t.Fatalf("non-diffing element must not carry patches: %+v", last.Patches)
	}
	if last.Element != el {
		t.Fatalf("notification must name the flushed element")
	}
}

func TestNotify_AssemblyErrorReachesObservers(t *testing.T) {
	reg := jsonelem.NewRegistry()
	def := reg.MustDefine("strictnum", []jsonelem.Key{
		{Name: "v", Input: jsonelem.NumberInput{Strict: true}},
	})
	loop := jsonelem.NewLoop()
	el := def.New(loop, jsonelem.WithDiff())
	var last jsonelem.Notification
	el.Observe(func(n jsonelem.Notification) { last = n })

	el.SetAttr("v", "boom")
	loop.Settle()
	if last.Err == nil {
		t.Fatalf("assembly failure must surface on the notification")
	}
	iss, _ := jsonelem.AsIssues(last.Err)
	if iss[0].Code != jsonelem.CodeNotANumber {
		t.Fatalf("expected not_a_number, got %+v", iss[0])
	}
	if last.Patches != nil {
		t.Fatalf("failed assembly must not produce patches")
	}
}

func TestNotify_ObserverAddedDuringDispatchMissesInFlight(t *testing.T) {
	_, track, _ := trackReg(t)
	loop := jsonelem.NewLoop()
	el := track.New(loop)
	lateFired := 0
	el.Observe(func(jsonelem.Notification) {
		el.Observe(func(jsonelem.Notification) { lateFired++ })
	})
	el.SetAttr("name", "x")
	loop.Settle()
	if lateFired != 0 {
		t.Fatalf("observer registered during dispatch must not see the in-flight notification")
	}
	el.SetAttr("name", "y")
	loop.Settle()
	if lateFired == 0 {
		t.Fatalf("late observer must see subsequent notifications")
	}
}
