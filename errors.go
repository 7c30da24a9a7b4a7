package jsonelem

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidSchemaInput  = "invalid_schema_input"
	CodeRequired            = "required"
	CodeSlotType            = "slot_type"
	CodeNotANumber          = "not_a_number"
	CodeDuplicateDefinition = "duplicate_definition"
	CodeUnknownDefinition   = "unknown_definition"
	CodeParseError          = "parse_error"
	CodeBadPointer          = "bad_pointer"
	CodeBadPatch            = "bad_patch"
)

// Issue represents a single schema or assembly error.
type Issue struct {
	Path    string // JSON Pointer (for example: /points/2/lat).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: offending input shapes, expected types, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"key":"lat", "got":"[]int"})
	// for i18n and observability.
	Params map[string]any
}

// Issues is a collection of errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. required at /lat
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// IssueAt creates an Issue at the given pointer with provided code, message
// and params map. Convenience helper for call sites with many parameters.
func IssueAt(path, code, msg string, params map[string]any) Issue {
	return Issue{Path: path, Code: code, Message: msg, Params: params}
}

// rebaseIssues shifts child issue paths under "/"+segment so that errors from
// nested getters and child elements point into the parent document.
func rebaseIssues(err error, segment string) error {
	if err == nil {
		return nil
	}
	base := "/" + escapeToken(segment)
	child, ok := AsIssues(err)
	if !ok {
		return Issues{{Path: base, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	out := make(Issues, 0, len(child))
	for _, it := range child {
		p := it.Path
		if p == "" || p == "/" {
			p = base
		} else if p[0] == '/' {
			p = base + p
		} else {
			p = base + "/" + p
		}
		out = append(out, Issue{Path: p, Code: it.Code, Message: it.Message, Hint: it.Hint, Cause: it.Cause, Params: it.Params})
	}
	return out
}
