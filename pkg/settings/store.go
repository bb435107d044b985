package settings

import "sync/atomic"

// Store holds the current settings. Readers always see a complete snapshot; Swap
// replaces it wholesale.
type Store struct {
	current atomic.Pointer[Settings]
}

func NewStore(s *Settings) *Store {
	st := &Store{}
	st.current.Store(s)
	return st
}

// Load returns the current snapshot. Callers must not modify it.
func (st *Store) Load() *Settings {
	return st.current.Load()
}

// Swap installs s and returns the previous snapshot.
func (st *Store) Swap(s *Settings) *Settings {
	return st.current.Swap(s)
}
