package tree

import (
	"maps"

	"opening_tree/internal/domain/chess"
)

// Headers заголовки партии (Seven Tag Roster и служебные поля).
type Headers struct {
	Event  string `json:"event" bson:"event"`
	Site   string `json:"site" bson:"site"`
	Date   string `json:"date" bson:"date"`
	Round  string `json:"round" bson:"round"`
	White  string `json:"white" bson:"white"`
	Black  string `json:"black" bson:"black"`
	Result string `json:"result" bson:"result"`
	// FEN is the starting position when it differs from the standard one.
	FEN string `json:"fen,omitempty" bson:"fen,omitempty"`
	// Start marks where a repertoire begins.
	Start       Path              `json:"start,omitempty" bson:"start,omitempty"`
	Orientation chess.Color       `json:"orientation" bson:"orientation"`
	Extra       map[string]string `json:"extra,omitempty" bson:"extra,omitempty"`
}

func DefaultHeaders() Headers {
	return Headers{
		Event:       "?",
		Site:        "?",
		Date:        "????.??.??",
		Round:       "?",
		White:       "?",
		Black:       "?",
		Result:      chess.ResultUnknown,
		Orientation: chess.White,
	}
}

func (h Headers) clone() Headers {
	c := h
	c.Start = h.Start.Clone()
	if h.Extra != nil {
		c.Extra = maps.Clone(h.Extra)
	}
	return c
}

// Report tracks a background job running against the tree.
type Report struct {
	InProgress bool    `json:"inProgress" bson:"in_progress"`
	Progress   float64 `json:"progress" bson:"progress"`
	Completed  bool    `json:"completed" bson:"completed"`
}

// State is a published tree plus cursor and game metadata. Nodes reachable
// from Root are never modified in place: every edit installs a new root, so a
// Snapshot can be held for as long as needed.
type State struct {
	Root     *Node   `json:"root" bson:"root"`
	Position Path    `json:"position" bson:"position"`
	Headers  Headers `json:"headers" bson:"headers"`
	Dirty    bool    `json:"dirty" bson:"dirty"`
	Report   Report  `json:"report" bson:"report"`
}

// New creates a state with a single root at fen (standard start when empty).
func New(fen string) *State {
	if fen == "" {
		fen = chess.StartFEN
	}
	h := DefaultHeaders()
	if fen != chess.StartFEN {
		h.FEN = fen
	}
	return &State{
		Root:     NewRoot(fen),
		Position: Path{},
		Headers:  h,
	}
}

// Snapshot returns a copy that shares the (immutable) node graph but owns
// its cursor and headers.
func (s *State) Snapshot() State {
	c := *s
	c.Position = s.Position.Clone()
	c.Headers = s.Headers.clone()
	return c
}

// Current resolves the cursor. The returned node is published and must not
// be modified.
func (s *State) Current() *Node {
	n, _ := Resolve(s.Root, s.Position)
	return n
}

// StartFEN is the FEN of the root position.
func (s *State) StartFEN() string {
	return s.Root.FEN
}
