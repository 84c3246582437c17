package integration

import (
	"fmt"
	"strings"
)

// wildcardToken marks array traversal inside a dotted path
const wildcardToken = "[*]"

// Path is a parsed dotted address into a JSON tree.
// A path holds at most one array wildcard: head addresses the array, tail addresses
// a value inside each element. Without a wildcard only head is used.
type Path struct {
	head     []string
	wildcard bool
	tail     []string
}

// ParsePath parses a dotted path such as "company.taxId" or "workers[*].idNumber"
func ParsePath(raw string) (Path, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Path{}, ErrPathEmpty
	}

	switch strings.Count(s, wildcardToken) {
	case 0:
		head, err := splitSegments(s)
		if err != nil {
			return Path{}, fmt.Errorf("%w: %q", err, raw)
		}
		return Path{head: head}, nil
	case 1:
	default:
		return Path{}, fmt.Errorf("%w: %q", ErrPathMultipleWildcards, raw)
	}

	idx := strings.Index(s, wildcardToken)
	arrayPart := s[:idx]
	rest := s[idx+len(wildcardToken):]
	if arrayPart == "" {
		return Path{}, fmt.Errorf("%w: wildcard without array path in %q", ErrPathMalformed, raw)
	}
	head, err := splitSegments(arrayPart)
	if err != nil {
		return Path{}, fmt.Errorf("%w: %q", err, raw)
	}

	var tail []string
	if rest != "" {
		if !strings.HasPrefix(rest, ".") {
			return Path{}, fmt.Errorf("%w: wildcard must end a segment in %q", ErrPathMalformed, raw)
		}
		tail, err = splitSegments(rest[1:])
		if err != nil {
			return Path{}, fmt.Errorf("%w: %q", err, raw)
		}
	}

	return Path{head: head, wildcard: true, tail: tail}, nil
}

// MustParsePath is like ParsePath but panics on error. Intended for literals.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

func splitSegments(s string) ([]string, error) {
	segments := strings.Split(s, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, ErrPathEmptySegment
		}
		if strings.ContainsAny(seg, "[]") {
			return nil, ErrPathMalformed
		}
	}
	return segments, nil
}

// HasWildcard reports whether the path traverses an array
func (p Path) HasWildcard() bool {
	return p.wildcard
}

// IsZero reports whether the path was never parsed
func (p Path) IsZero() bool {
	return len(p.head) == 0
}

// ArrayPath returns the segments leading to the array (or the whole path without wildcard)
func (p Path) ArrayPath() []string {
	return append([]string(nil), p.head...)
}

// ItemPath returns the segments addressed inside each array element
func (p Path) ItemPath() []string {
	return append([]string(nil), p.tail...)
}

// String renders the path back to its dotted form
func (p Path) String() string {
	s := strings.Join(p.head, ".")
	if !p.wildcard {
		return s
	}
	s += wildcardToken
	if len(p.tail) > 0 {
		s += "." + strings.Join(p.tail, ".")
	}
	return s
}

// Get resolves the path against root.
// Missing keys resolve to nil. A wildcard path returns one value per array element,
// or nil when the array is absent or not an array.
func (p Path) Get(root any) any {
	if !p.wildcard {
		return lookup(root, p.head)
	}

	items, ok := asSlice(lookup(root, p.head))
	if !ok {
		return nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		if len(p.tail) == 0 {
			out[i] = item
			continue
		}
		out[i] = lookup(item, p.tail)
	}
	return out
}

// Set writes value at the path, creating intermediate objects and arrays on demand.
// A wildcard path requires a slice value and writes element i into the object at
// index i of the destination array. A nil value on a wildcard path writes nothing.
func (p Path) Set(root map[string]any, value any) error {
	if root == nil {
		return fmt.Errorf("%w: nil root", ErrPathMalformed)
	}
	if len(p.head) == 0 {
		return ErrPathEmpty
	}
	if !p.wildcard {
		assign(root, p.head, value)
		return nil
	}

	if value == nil {
		return nil
	}
	values, ok := asSlice(value)
	if !ok {
		return fmt.Errorf("%w: %s got %T", ErrPathWildcardValue, p, value)
	}

	parent := ensureObject(root, p.head[:len(p.head)-1])
	key := p.head[len(p.head)-1]
	dest, _ := asSlice(parent[key])
	dest = append([]any(nil), dest...)

	for i, v := range values {
		for len(dest) <= i {
			dest = append(dest, nil)
		}
		if len(p.tail) == 0 {
			dest[i] = v
			continue
		}
		obj, ok := dest[i].(map[string]any)
		if !ok {
			obj = make(map[string]any)
			dest[i] = obj
		}
		assign(obj, p.tail, v)
	}
	parent[key] = dest
	return nil
}

// Get parses path and resolves it against root
func Get(root any, path string) (any, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return p.Get(root), nil
}

// Set parses path and writes value into root
func Set(root map[string]any, path string, value any) error {
	p, err := ParsePath(path)
	if err != nil {
		return err
	}
	return p.Set(root, value)
}

func lookup(root any, segments []string) any {
	cur := root
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
	}
	return cur
}

// assign writes value at segments, replacing non-object intermediates with objects
func assign(root map[string]any, segments []string, value any) {
	parent := ensureObject(root, segments[:len(segments)-1])
	parent[segments[len(segments)-1]] = value
}

func ensureObject(root map[string]any, segments []string) map[string]any {
	cur := root
	for _, seg := range segments {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}
	return cur
}

// asSlice accepts the slice shapes produced by encoding/json and by ToMap
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []map[string]any:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	case []string:
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out, true
	default:
		return nil, false
	}
}
