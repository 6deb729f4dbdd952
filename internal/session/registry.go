package session

// Registry tracks live sessions in accept order and keeps a round-robin
// cursor used to take turns between sessions when draining inbound work.
// It is owned by the dispatch goroutine and is not safe for concurrent use.
type Registry struct {
	sessions []*Session
	byID     map[string]*Session
	cursor   int
}

func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]*Session),
	}
}

// Add registers s. It returns false if s is already registered.
func (r *Registry) Add(s *Session) bool {
	if _, ok := r.byID[s.ID]; ok {
		return false
	}
	r.byID[s.ID] = s
	r.sessions = append(r.sessions, s)
	return true
}

// Remove unregisters s and keeps the cursor pointing at the session that
// would have been visited next.
func (r *Registry) Remove(s *Session) bool {
	if _, ok := r.byID[s.ID]; !ok {
		return false
	}
	delete(r.byID, s.ID)
	for i, cur := range r.sessions {
		if cur != s {
			continue
		}
		r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
		if i < r.cursor {
			r.cursor--
		}
		break
	}
	if r.cursor >= len(r.sessions) {
		r.cursor = 0
	}
	return true
}

func (r *Registry) Get(id string) (*Session, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// All returns the sessions in accept order. The slice is a copy; the
// sessions are not.
func (r *Registry) All() []*Session {
	out := make([]*Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

// AcceptedCount returns the number of sessions past the handshake.
func (r *Registry) AcceptedCount() int {
	n := 0
	for _, s := range r.sessions {
		if s.IsAccepted() {
			n++
		}
	}
	return n
}

// Next advances the round-robin cursor and returns the session it passed.
// It returns nil when the registry is empty.
func (r *Registry) Next() *Session {
	if len(r.sessions) == 0 {
		return nil
	}
	if r.cursor >= len(r.sessions) {
		r.cursor = 0
	}
	s := r.sessions[r.cursor]
	r.cursor++
	return s
}
