package jsonelem_test

import (
	"testing"

	jsonelem "github.com/reoring/jsonelem"
)

func TestLoop_TurnRunsOnlyCurrentBatch(t *testing.T) {
	loop := jsonelem.NewLoop()
	var order []string
	loop.Schedule(func() {
		order = append(order, "first")
		loop.Schedule(func() { order = append(order, "nested") })
	})
	loop.Schedule(func() { order = append(order, "second") })

	if n := loop.Turn(); n != 2 {
		t.Fatalf("first turn ran %d tasks, want 2", n)
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("nested task leaked into its own turn: %v", order)
	}
	if loop.Pending() != 1 {
		t.Fatalf("nested task must be queued for the next turn")
	}
	if n := loop.Turn(); n != 1 {
		t.Fatalf("second turn ran %d tasks, want 1", n)
	}
	if order[2] != "nested" {
		t.Fatalf("order = %v", order)
	}
}

func TestLoop_SettleDrainsChains(t *testing.T) {
	loop := jsonelem.NewLoop()
	depth := 0
	var chain func()
	chain = func() {
		depth++
		if depth < 5 {
			loop.Schedule(chain)
		}
	}
	loop.Schedule(chain)
	loop.Settle()
	if depth != 5 || loop.Pending() != 0 {
		t.Fatalf("settle must drain the chain: depth=%d pending=%d", depth, loop.Pending())
	}
}
