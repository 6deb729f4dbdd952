package session

import (
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/verse-server/backend/internal/protocol"
)

// State tracks where a session is in the connect handshake.
type State int

const (
	Pending  State = iota // transport accepted, no Connect yet
	Accepted              // Connect processed, avatar assigned
	Closed                // detached from the engine
)

var stateNames = map[State]string{
	Pending:  "pending",
	Accepted: "accepted",
	Closed:   "closed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// Session is one connected remote participant. Sessions are compared by
// pointer identity everywhere in the engine.
type Session struct {
	ID          string          `json:"id"`
	Address     string          `json:"address"`
	Name        string          `json:"name"`
	Credential  string          `json:"-"`
	Avatar      protocol.NodeID `json:"avatar"`
	State       State           `json:"state"`
	ConnectedAt time.Time       `json:"connectedAt"`
}

// New creates a pending session for a freshly accepted transport connection.
func New(address string) *Session {
	return &Session{
		ID:          ulid.Make().String(),
		Address:     address,
		Avatar:      protocol.NodeAny,
		State:       Pending,
		ConnectedAt: time.Now(),
	}
}

func (s *Session) IsAccepted() bool {
	return s != nil && s.State == Accepted
}

// Clone returns a copy safe to hand to other goroutines.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}

func (s *Session) String() string {
	if s == nil {
		return "<none>"
	}
	if s.Name != "" {
		return s.Name + "@" + s.ID
	}
	return s.ID
}
