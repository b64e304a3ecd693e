package executor

import (
	"reflect"
	"strconv"
	"strings"
)

// Path addresses a value in the response: response names for object fields,
// indices for list items.
type Path []PathElement

type PathElement any

// String renders p as "me.reviews[0].body".
func (p Path) String() string {
	var b strings.Builder
	for i, elem := range p {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(v)
		case int:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(v))
			b.WriteByte(']')
		}
	}
	return b.String()
}

func (p Path) with(elem PathElement) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = elem
	return out
}

// tombstones remembers response positions that were set to null. Work queued
// below them is dropped.
type tombstones map[string]struct{}

func (t tombstones) add(p Path) {
	if len(p) > 0 {
		t[p.String()] = struct{}{}
	}
}

func (t tombstones) covers(p Path) bool {
	if len(t) == 0 {
		return false
	}
	for i := 1; i <= len(p); i++ {
		if _, ok := t[p[:i].String()]; ok {
			return true
		}
	}
	return false
}

// pending marks a response key whose value arrives with a later batch.
type pending struct{}

// store writes v at p below root. Missing intermediate objects are not
// created: a position that is gone was nulled on the way.
func store(root map[string]any, p Path, v any) {
	if len(p) == 0 {
		return
	}
	var cur any = root
	for _, elem := range p[:len(p)-1] {
		switch e := elem.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return
			}
			cur = m[e]
		case int:
			s, ok := cur.([]any)
			if !ok || e >= len(s) {
				return
			}
			cur = s[e]
		}
	}
	switch e := p[len(p)-1].(type) {
	case string:
		if m, ok := cur.(map[string]any); ok {
			m[e] = v
		}
	case int:
		if s, ok := cur.([]any); ok && e < len(s) {
			s[e] = v
		}
	}
}

// isNullish reports nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// listItems returns the elements of a slice or array value.
func listItems(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
