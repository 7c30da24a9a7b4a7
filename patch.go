package jsonelem

import (
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/reoring/jsonelem/i18n"
)

// Apply applies a patch to doc and returns the transformed value. The input
// is never mutated: the document is deep-copied through canonical
// serialization first, which also normalizes numbers to float64.
func Apply(doc any, ops []Op) (any, error) {
	cur, err := deepCopy(doc)
	if err != nil {
		return nil, err
	}
	for i, op := range ops {
		cur, err = applyOne(cur, op)
		if err != nil {
			return nil, rebaseIssues(err, strconv.Itoa(i))
		}
	}
	return cur, nil
}

func deepCopy(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, Issues{{Path: "", Code: CodeBadPatch, Message: i18n.T(CodeBadPatch, nil), Cause: err}}
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, Issues{{Path: "", Code: CodeBadPatch, Message: i18n.T(CodeBadPatch, nil), Cause: err}}
	}
	return out, nil
}

func applyOne(doc any, op Op) (any, error) {
	segs, err := splitPointer(op.Path)
	if err != nil {
		return nil, err
	}
	switch op.Op {
	case OpAdd:
		return setAt(doc, segs, op.Value, true, op.Path)
	case OpReplace:
		return setAt(doc, segs, op.Value, false, op.Path)
	case OpRemove:
		if len(segs) == 0 {
			return nil, badPatch(op.Path, "cannot remove the whole document")
		}
		return removeAt(doc, segs, op.Path)
	default:
		return nil, badPatch(op.Path, "unsupported op "+strconv.Quote(op.Op))
	}
}

// setAt writes value at the addressed location, returning the (possibly
// re-allocated) subtree so array growth propagates to the enclosing
// container. insert follows add semantics: array writes shift elements right
// and "-" appends.
func setAt(node any, segs []string, value any, insert bool, path string) (any, error) {
	if len(segs) == 0 {
		return value, nil
	}
	seg := segs[0]
	switch t := node.(type) {
	case map[string]any:
		if len(segs) == 1 {
			if !insert {
				if _, ok := t[seg]; !ok {
					return nil, badPointer(path, "no member "+strconv.Quote(seg))
				}
			}
			t[seg] = value
			return t, nil
		}
		child, ok := t[seg]
		if !ok {
			return nil, badPointer(path, "no member "+strconv.Quote(seg))
		}
		next, err := setAt(child, segs[1:], value, insert, path)
		if err != nil {
			return nil, err
		}
		t[seg] = next
		return t, nil
	case []any:
		if len(segs) == 1 {
			if insert {
				i, err := arrayIndex(seg, len(t), true, path)
				if err != nil {
					return nil, err
				}
				t = append(t, nil)
				copy(t[i+1:], t[i:])
				t[i] = value
				return t, nil
			}
			i, err := arrayIndex(seg, len(t), false, path)
			if err != nil {
				return nil, err
			}
			t[i] = value
			return t, nil
		}
		i, err := arrayIndex(seg, len(t), false, path)
		if err != nil {
			return nil, err
		}
		next, err := setAt(t[i], segs[1:], value, insert, path)
		if err != nil {
			return nil, err
		}
		t[i] = next
		return t, nil
	default:
		return nil, badPointer(path, "cannot descend into a scalar")
	}
}

// removeAt deletes the addressed location, returning the rebuilt subtree.
func removeAt(node any, segs []string, path string) (any, error) {
	seg := segs[0]
	switch t := node.(type) {
	case map[string]any:
		if len(segs) == 1 {
			if _, ok := t[seg]; !ok {
				return nil, badPointer(path, "no member "+strconv.Quote(seg))
			}
			delete(t, seg)
			return t, nil
		}
		child, ok := t[seg]
		if !ok {
			return nil, badPointer(path, "no member "+strconv.Quote(seg))
		}
		next, err := removeAt(child, segs[1:], path)
		if err != nil {
			return nil, err
		}
		t[seg] = next
		return t, nil
	case []any:
		i, err := arrayIndex(seg, len(t), false, path)
		if err != nil {
			return nil, err
		}
		if len(segs) == 1 {
			return append(t[:i], t[i+1:]...), nil
		}
		next, err := removeAt(t[i], segs[1:], path)
		if err != nil {
			return nil, err
		}
		t[i] = next
		return t, nil
	default:
		return nil, badPointer(path, "cannot descend into a scalar")
	}
}

func arrayIndex(seg string, length int, allowEnd bool, path string) (int, error) {
	if allowEnd && seg == "-" {
		return length, nil
	}
	i, err := strconv.Atoi(seg)
	if err != nil || i < 0 {
		return 0, badPointer(path, "bad array index "+strconv.Quote(seg))
	}
	max := length
	if !allowEnd {
		max = length - 1
	}
	if i > max {
		return 0, badPointer(path, "index "+seg+" out of range")
	}
	return i, nil
}

func badPointer(path, hint string) error {
	return Issues{{Path: path, Code: CodeBadPointer, Message: i18n.T(CodeBadPointer, nil), Hint: hint}}
}

func badPatch(path, hint string) error {
	return Issues{{Path: path, Code: CodeBadPatch, Message: i18n.T(CodeBadPatch, nil), Hint: hint}}
}
