package engine

import "errors"

// Reasons a command is dropped. They are never reported to the client; the
// text doubles as the metric label.
var (
	errNotConnected      = errors.New("not connected")
	errAlreadyConnected  = errors.New("already connected")
	errUnknownNode       = errors.New("unknown node")
	errUnknownResource   = errors.New("unknown resource")
	errUnknownElement    = errors.New("unknown element")
	errBadType           = errors.New("bad type")
	errEmptyName         = errors.New("empty name")
	errNameCollision     = errors.New("name collision")
	errTableFull         = errors.New("table full")
	errGrowthCap         = errors.New("growth cap")
	errCapacity          = errors.New("capacity")
	errDegeneratePolygon = errors.New("degenerate polygon")
	errBaseLayer         = errors.New("base layer")
	errOutOfRange        = errors.New("out of range")
	errBadPayload        = errors.New("bad payload")
	errUnhandled         = errors.New("unhandled command")
)
