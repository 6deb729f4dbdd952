package engine

import (
	"github.com/verse-server/backend/internal/protocol"
	"github.com/verse-server/backend/internal/session"
	"github.com/verse-server/backend/internal/subscription"
)

// dual keeps one subscriber list per wire precision for a real-valued
// quantity. A session sits in at most one of the two.
type dual struct {
	r32 *subscription.List
	r64 *subscription.List
}

func newDual() dual {
	return dual{r32: subscription.New(), r64: subscription.New()}
}

func (d dual) list(p protocol.Precision) *subscription.List {
	if p == protocol.Real32 {
		return d.r32
	}
	return d.r64
}

// add subscribes s at precision p, moving it out of the other list. It
// returns false if s was already subscribed at p.
func (d dual) add(s *session.Session, p protocol.Precision) bool {
	if p == protocol.Real32 {
		d.r64.Remove(s)
	} else {
		d.r32.Remove(s)
	}
	return d.list(p).Add(s)
}

func (d dual) remove(s *session.Session) bool {
	a := d.r32.Remove(s)
	b := d.r64.Remove(s)
	return a || b
}

func (d dual) each(fn func(s *session.Session)) {
	d.r64.Each(fn)
	d.r32.Each(fn)
}

// convert maps a canonical value to the wire precision of one fan-out.
type convert func(float64) float64

func identity(v float64) float64 { return v }

func narrow(v float64) float64 { return float64(float32(v)) }

func (c convert) vec3(v protocol.Vec3) protocol.Vec3 {
	return protocol.Vec3{c(v[0]), c(v[1]), c(v[2])}
}

func (c convert) quat(v protocol.Quat) protocol.Quat {
	return protocol.Quat{c(v[0]), c(v[1]), c(v[2]), c(v[3])}
}

// converter prepares the conversion from precision from to precision to and
// counts it. Same-precision fan-out needs none.
func (e *Engine) converter(from, to protocol.Precision) convert {
	if from == to {
		return identity
	}
	e.conversions++
	e.metrics.Conversions.Inc()
	if to == protocol.Real32 {
		return narrow
	}
	// Canonical values are stored as float64 already; widening is exact.
	return identity
}

// fanoutReal sends one command per precision list that has members. The
// command for a list is only built, and its conversion only prepared, when
// the list is non-empty.
func (e *Engine) fanoutReal(d dual, from protocol.Precision, build func(p protocol.Precision, c convert) protocol.Command) {
	for _, p := range [...]protocol.Precision{protocol.Real64, protocol.Real32} {
		l := d.list(p)
		if l.Len() == 0 {
			continue
		}
		e.fanout(l, build(p, e.converter(from, p)))
	}
}

// ingest rounds an incoming value to the precision it arrived at so the
// canonical copy holds exactly what the sender could express.
func ingest(p protocol.Precision) convert {
	if p == protocol.Real32 {
		return narrow
	}
	return identity
}

// maxPrecision tracks the highest precision ever received.
func maxPrecision(a, b protocol.Precision) protocol.Precision {
	if a == protocol.Real64 || b == protocol.Real64 {
		return protocol.Real64
	}
	return protocol.Real32
}
