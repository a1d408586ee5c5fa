// Package example is a small package bound to Starlark with starbind. It
// carries one of each declaration kind the generator understands: a record
// with methods (Counter, Player), a const enumeration (PlayerStatus) and a
// sealed interface (Shape).
//
// The bindings live in zz_generated.starbind.go and are refreshed with
//
//	go generate ./example
package example

//go:generate go run github.com/teranos/starbind/cmd/starbind generate .
