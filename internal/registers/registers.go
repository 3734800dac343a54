// Package registers implements the named clipboard store: a process-scoped
// (or, in a fan-out worker, per-unit) mapping from an optional register
// letter to its payload, with uppercase-append write semantics.
//
// Grounded on spec.md §4.2 and original_source/src/register.rs; the
// single-owner-per-goroutine constraint mirrors internal/cachemanager's
// pattern of one cache instance per consumer rather than a shared global.
package registers

import "github.com/vicut/vicut/internal/linebuf"

// Store holds the default register plus the 26 named registers a..z.
// It is not safe for concurrent use — a parallel driver gives each worker
// its own Store (spec.md §5).
type Store struct {
	def   linebuf.Register
	named map[rune]linebuf.Register
}

// New creates an empty register store.
func New() *Store {
	return &Store{named: make(map[rune]linebuf.Register)}
}

// Get returns the register for name (nil = default), or a zero Register if
// never written.
func (s *Store) Get(name *rune) linebuf.Register {
	if name == nil {
		return s.def
	}
	return s.named[*name]
}

// Set writes value to the register named by name, or the default register
// if name is nil. If append is true and the register already holds
// content, value is appended rather than replacing it (Vim's uppercase
// register semantics); the combined register's whole-line flag is set if
// either the existing or incoming payload was whole-line.
func (s *Store) Set(name *rune, value linebuf.Register, append bool) {
	if name == nil {
		s.def = s.combine(s.def, value, append)
		return
	}
	existing := s.named[*name]
	s.named[*name] = s.combine(existing, value, append)
}

func (s *Store) combine(existing, incoming linebuf.Register, appendTo bool) linebuf.Register {
	if !appendTo || existing.Content == "" {
		return incoming
	}
	sep := ""
	if existing.IsWholeLine && !hasTrailingNewline(existing.Content) {
		sep = "\n"
	}
	return linebuf.Register{
		Content:     existing.Content + sep + incoming.Content,
		IsWholeLine: existing.IsWholeLine || incoming.IsWholeLine,
	}
}

func hasTrailingNewline(s string) bool {
	return len(s) > 0 && s[len(s)-1] == '\n'
}

// Clear empties all registers.
func (s *Store) Clear() {
	s.def = linebuf.Register{}
	s.named = make(map[rune]linebuf.Register)
}
