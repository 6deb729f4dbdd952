// Package subscription holds the per-resource sets of sessions that receive
// replication traffic.
package subscription

import "github.com/verse-server/backend/internal/session"

// chunk is the growth step of a list's backing storage.
const chunk = 16

// List is an unordered set of sessions attached to one node or resource.
// A session appears at most once. Fan-out is done through Each, which hands
// the target session to the callback explicitly.
type List struct {
	sessions []*session.Session
}

func New() *List {
	return &List{}
}

// Add appends s if absent. It returns false when s is already a member.
func (l *List) Add(s *session.Session) bool {
	if l.Contains(s) {
		return false
	}
	if len(l.sessions) == cap(l.sessions) {
		grown := make([]*session.Session, len(l.sessions), len(l.sessions)+chunk)
		copy(grown, l.sessions)
		l.sessions = grown
	}
	l.sessions = append(l.sessions, s)
	return true
}

// Remove drops s if present and reports whether it was a member. Order is
// not preserved.
func (l *List) Remove(s *session.Session) bool {
	for i, cur := range l.sessions {
		if cur == s {
			last := len(l.sessions) - 1
			l.sessions[i] = l.sessions[last]
			l.sessions[last] = nil
			l.sessions = l.sessions[:last]
			return true
		}
	}
	return false
}

func (l *List) Contains(s *session.Session) bool {
	for _, cur := range l.sessions {
		if cur == s {
			return true
		}
	}
	return false
}

// Len returns the member count. A nil list is empty.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.sessions)
}

// At returns member i, 0 <= i < Len().
func (l *List) At(i int) *session.Session {
	return l.sessions[i]
}

// Each calls fn once per member. fn must not add to or remove from l.
func (l *List) Each(fn func(s *session.Session)) {
	if l == nil {
		return
	}
	for _, s := range l.sessions {
		fn(s)
	}
}

// Clear drops every member.
func (l *List) Clear() {
	for i := range l.sessions {
		l.sessions[i] = nil
	}
	l.sessions = l.sessions[:0]
}
