package game

import (
	"opening_tree/internal/domain/tree"
)

// Session is what the API returns for a tree session.
type Session struct {
	ID      string     `json:"id"`
	State   tree.State `json:"state"`
	CanUndo bool       `json:"can_undo"`
	CanRedo bool       `json:"can_redo"`
}

type CreateSessionRequest struct {
	FEN string `json:"fen,omitempty"`
	PGN string `json:"pgn,omitempty"`
}

type ReplaceRequest struct {
	PGN string `json:"pgn"`
}

type ResetRequest struct {
	FEN string `json:"fen,omitempty"`
}

// Edit operations accepted by EditRequest.Op.
const (
	OpComment           = "comment"
	OpAnnotation        = "annotation"
	OpShapes            = "shapes"
	OpToggleShape       = "toggle_shape"
	OpClearShapes       = "clear_shapes"
	OpClock             = "clock"
	OpDelete            = "delete"
	OpPromote           = "promote"
	OpPromoteToMainline = "promote_to_mainline"
	OpHeaders           = "headers"
	OpGoTo              = "goto"
	OpNext              = "next"
	OpPrevious          = "previous"
	OpStart             = "start"
	OpEnd               = "end"
)

type EditRequest struct {
	Op         string        `json:"op"`
	Path       string        `json:"path,omitempty"`
	Text       string        `json:"text,omitempty"`
	Annotation string        `json:"annotation,omitempty"`
	Shapes     []tree.Shape  `json:"shapes,omitempty"`
	Shape      *tree.Shape   `json:"shape,omitempty"`
	ClockMs    *int64        `json:"clock_ms,omitempty"`
	Headers    *tree.Headers `json:"headers,omitempty"`
}

// Transposition is another place in the tree reaching the same position.
type Transposition struct {
	Path string `json:"path"`
	SAN  string `json:"san"`
}
