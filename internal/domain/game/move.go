package game

import (
	"opening_tree/internal/domain/tree"
)

// MoveRequest takes either notation in Move or a typed From/To pair.
type MoveRequest struct {
	Move          string `json:"move,omitempty"`
	From          string `json:"from,omitempty"`
	To            string `json:"to,omitempty"`
	Promotion     string `json:"promotion,omitempty"`
	Mainline      bool   `json:"mainline,omitempty"`
	UpdateHeaders bool   `json:"update_headers,omitempty"`
}

type MoveResponse struct {
	Cue   string     `json:"cue"`
	State tree.State `json:"state"`
}

type MovesRequest struct {
	Moves         []string `json:"moves"`
	Mainline      bool     `json:"mainline,omitempty"`
	UpdateHeaders bool     `json:"update_headers,omitempty"`
}

type MovesResponse struct {
	Applied int        `json:"applied"`
	State   tree.State `json:"state"`
}

// ImportRequest drives a chunked import over the websocket stream.
type ImportRequest struct {
	Moves     []string `json:"moves"`
	ChunkSize int      `json:"chunk_size,omitempty"`
	Mainline  bool     `json:"mainline,omitempty"`
}

type ImportProgress struct {
	Applied  int     `json:"applied"`
	Total    int     `json:"total"`
	Progress float64 `json:"progress"`
	Done     bool    `json:"done"`
	Error    string  `json:"error,omitempty"`
}

// AnalysisRequest carries one engine result for the node at Path.
type AnalysisRequest struct {
	Path  string   `json:"path"`
	CP    *int     `json:"cp,omitempty"`
	Mate  *int     `json:"mate,omitempty"`
	Depth int      `json:"depth,omitempty"`
	PV    []string `json:"pv,omitempty"`
}

type AnalysisResponse struct {
	Added int        `json:"added"`
	State tree.State `json:"state"`
}
