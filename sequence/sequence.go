package sequence

import (
	"maps"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kbukum/factorygirl/util"
)

// DefaultSymbol names the counter used by a bare {{sequence}} token.
const DefaultSymbol = "default"

var tokenPattern = regexp.MustCompile(`\{\{sequence(?:\(\s*:\s*([^,\s)]+)\s*(?:,\s*(-?\d+)\s*)?\))?\}\}`)

// Generator holds named counters. The zero value is not usable; call New.
// A Generator is safe for concurrent use, but concurrent expansions of the
// same symbol race for values in no particular order.
type Generator struct {
	mu   sync.Mutex
	last map[string]int64
}

// New returns a Generator with no counters.
func New() *Generator {
	return &Generator{last: make(map[string]int64)}
}

// HasToken reports whether s contains a sequence token.
func HasToken(s string) bool {
	return tokenPattern.MatchString(s)
}

// Expand replaces the first sequence token in s with the next counter
// value. Every identical copy of that token in s receives the same value.
// Strings without a token are returned unchanged.
func (g *Generator) Expand(s string) string {
	m := tokenPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}

	symbol := m[1]
	var start int64
	if m[2] != "" {
		var err error
		// A start outside the int64 range leaves the token unexpanded.
		if start, err = strconv.ParseInt(m[2], 10, 64); err != nil {
			return s
		}
	}
	return strings.ReplaceAll(s, m[0], strconv.FormatInt(g.Next(symbol, start), 10))
}

// ExpandValue expands tokens in v. Strings are expanded; maps with string
// keys and slices, including named types such as map[string]string, are
// copied with every string leaf expanded and keep their type; anything else
// is returned as is. Map entries are visited in key order so shared
// counters advance deterministically.
func (g *Generator) ExpandValue(v any) any {
	switch t := v.(type) {
	case string:
		return g.Expand(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for _, k := range util.SortedKeys(t) {
			out[k] = g.ExpandValue(t[k])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = g.ExpandValue(inner)
		}
		return out
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return reflect.ValueOf(g.Expand(rv.String())).Convert(rv.Type()).Interface()
	case reflect.Map:
		if rv.IsNil() || rv.Type().Key().Kind() != reflect.String {
			return v
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		for _, k := range keys {
			out.SetMapIndex(k, g.expandElem(rv.MapIndex(k), rv.Type().Elem()))
		}
		return out.Interface()
	case reflect.Slice:
		if rv.IsNil() || rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := range rv.Len() {
			out.Index(i).Set(g.expandElem(rv.Index(i), rv.Type().Elem()))
		}
		return out.Interface()
	default:
		return v
	}
}

// expandElem expands one map or slice element and returns it as a value
// assignable to elemType.
func (g *Generator) expandElem(elem reflect.Value, elemType reflect.Type) reflect.Value {
	if !elem.CanInterface() {
		return elem
	}
	expanded := g.ExpandValue(elem.Interface())
	if expanded == nil {
		return reflect.Zero(elemType)
	}
	ev := reflect.ValueOf(expanded)
	if !ev.Type().AssignableTo(elemType) {
		return elem
	}
	return ev
}

// Next returns the next value for symbol. An empty symbol means
// DefaultSymbol. start is used only when the counter does not exist yet.
func (g *Generator) Next(symbol string, start int64) int64 {
	if symbol == "" {
		symbol = DefaultSymbol
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	v, ok := g.last[symbol]
	if ok {
		v++
	} else {
		v = start
	}
	g.last[symbol] = v
	return v
}

// Reset removes the counter for one symbol.
func (g *Generator) Reset(symbol string) {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	g.mu.Lock()
	delete(g.last, symbol)
	g.mu.Unlock()
}

// ResetAll removes every counter.
func (g *Generator) ResetAll() {
	g.mu.Lock()
	clear(g.last)
	g.mu.Unlock()
}

// Snapshot returns the last value issued for every symbol.
func (g *Generator) Snapshot() map[string]int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return maps.Clone(g.last)
}

// Restore replaces all counters with a snapshot.
func (g *Generator) Restore(snapshot map[string]int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = make(map[string]int64, len(snapshot))
	maps.Copy(g.last, snapshot)
}
