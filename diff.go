package jsonelem

import (
	"sort"
	"strconv"

	json "github.com/goccy/go-json"
)

// Patch operation names, the structural subset of RFC 6902. Moves and copies
// are never produced; a reordered array diffs as per-index replacements.
const (
	OpAdd     = "add"
	OpReplace = "replace"
	OpRemove  = "remove"
)

// Op is one RFC 6902 operation. Paths are JSON Pointers into the new value
// (old value for removes).
type Op struct {
	Op    string
	Path  string
	Value any
}

// MarshalJSON omits value on remove, which carries none in RFC 6902.
func (o Op) MarshalJSON() ([]byte, error) {
	if o.Op == OpRemove {
		return json.Marshal(struct {
			Op   string `json:"op"`
			Path string `json:"path"`
		}{o.Op, o.Path})
	}
	return json.Marshal(struct {
		Op    string `json:"op"`
		Path  string `json:"path"`
		Value any    `json:"value"`
	}{o.Op, o.Path, o.Value})
}

func (o *Op) UnmarshalJSON(data []byte) error {
	var raw struct {
		Op    string `json:"op"`
		Path  string `json:"path"`
		Value any    `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	o.Op, o.Path, o.Value = raw.Op, raw.Path, raw.Value
	return nil
}

// Diff computes the operations transforming prev into next. Equal inputs
// yield nil. Containers of differing kinds, and every scalar change, become a
// single replace of the whole subtree; only object-to-object and
// array-to-array pairs recurse.
func Diff(prev, next any) []Op {
	return diffAt("", prev, next, nil)
}

func diffAt(path string, prev, next any, ops []Op) []Op {
	po, pIsObj := prev.(map[string]any)
	no, nIsObj := next.(map[string]any)
	if pIsObj && nIsObj {
		return diffObjects(path, po, no, ops)
	}
	pa, pIsArr := prev.([]any)
	na, nIsArr := next.([]any)
	if pIsArr && nIsArr {
		return diffArrays(path, pa, na, ops)
	}
	if jsonEqual(prev, next) {
		return ops
	}
	return append(ops, Op{Op: OpReplace, Path: path, Value: next})
}

// diffObjects walks added-or-changed keys sorted ascending, then removed keys
// sorted ascending, for deterministic output independent of map iteration.
func diffObjects(path string, prev, next map[string]any, ops []Op) []Op {
	keys := make([]string, 0, len(next))
	for k := range next {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		child := joinPointer(path, k)
		pv, ok := prev[k]
		if !ok {
			ops = append(ops, Op{Op: OpAdd, Path: child, Value: next[k]})
			continue
		}
		ops = diffAt(child, pv, next[k], ops)
	}
	var removed []string
	for k := range prev {
		if _, ok := next[k]; !ok {
			removed = append(removed, k)
		}
	}
	sort.Strings(removed)
	for _, k := range removed {
		ops = append(ops, Op{Op: OpRemove, Path: joinPointer(path, k)})
	}
	return ops
}

// diffArrays compares positionally: the shared prefix recurses, a longer next
// appends adds, a longer prev emits removes in descending index order so the
// patch applies without index shifting.
func diffArrays(path string, prev, next []any, ops []Op) []Op {
	n := len(prev)
	if len(next) < n {
		n = len(next)
	}
	for i := 0; i < n; i++ {
		ops = diffAt(path+"/"+strconv.Itoa(i), prev[i], next[i], ops)
	}
	for i := n; i < len(next); i++ {
		ops = append(ops, Op{Op: OpAdd, Path: path + "/" + strconv.Itoa(i), Value: next[i]})
	}
	for i := len(prev) - 1; i >= n; i-- {
		ops = append(ops, Op{Op: OpRemove, Path: path + "/" + strconv.Itoa(i)})
	}
	return ops
}

// jsonEqual compares by canonical serialization, so 1 and 1.0 compare equal
// and map ordering never matters.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}
