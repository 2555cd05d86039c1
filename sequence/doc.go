// Package sequence expands sequence tokens embedded in strings.
//
// A token is one of
//
//	{{sequence}}
//	{{sequence(:symbol)}}
//	{{sequence(:symbol, start)}}
//
// and is replaced by the next value of the counter for symbol. The first
// value for a symbol is start (0 by default) and each later expansion adds
// one. Counters live in a Generator, so tests can own, reset or snapshot
// them instead of sharing process-wide state.
//
//	g := sequence.New()
//	g.Expand("user_{{sequence}}@example.com") // user_0@example.com
//	g.Expand("user_{{sequence}}@example.com") // user_1@example.com
package sequence
