package jsonelem

import "strings"

// escapeToken escapes one JSON Pointer segment per RFC 6901:
// '~' -> '~0', '/' -> '~1' (in that order).
func escapeToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~", "~0"), "/", "~1")
}

func unescapeToken(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
}

// splitPointer breaks a JSON Pointer into unescaped segments. The empty
// pointer addresses the whole document and yields no segments.
func splitPointer(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	if path[0] != '/' {
		return nil, Issues{{Path: path, Code: CodeBadPointer, Message: "pointer must start with '/'"}}
	}
	parts := strings.Split(path[1:], "/")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = unescapeToken(p)
	}
	return out, nil
}

// joinPointer appends one escaped segment to a pointer prefix.
func joinPointer(prefix, segment string) string {
	return prefix + "/" + escapeToken(segment)
}
