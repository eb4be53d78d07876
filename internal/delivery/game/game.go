package game

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"opening_tree/internal/bootstrap"
	"opening_tree/internal/domain/game"
	errs "opening_tree/internal/errors"
	"opening_tree/internal/httpresponse"
	"opening_tree/internal/pgn"
	gameuc "opening_tree/internal/usecase/game"
	"opening_tree/internal/utils"
)

type GameHandler struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *GameHandler {
	return &GameHandler{
		cfg:    cfg,
		log:    log,
		gameUC: gameUC,
	}
}

// Routes mounts the session API under the caller's router.
func (g *GameHandler) Routes(r chi.Router) {
	r.Post("/sessions", g.HandleCreate)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", g.HandleGet)
		r.Put("/", g.HandleReplace)
		r.Delete("/", g.HandleDelete)
		r.Post("/reset", g.HandleReset)
		r.Post("/save", g.HandleSave)
		r.Post("/close", g.HandleClose)
		r.Post("/move", g.HandleMove)
		r.Post("/moves", g.HandleMoves)
		r.Post("/edit", g.HandleEdit)
		r.Post("/undo", g.HandleUndo)
		r.Post("/redo", g.HandleRedo)
		r.Get("/pgn", g.HandleExport)
		r.Get("/transpositions", g.HandleTranspositions)
		r.Get("/import", g.HandleImport)
	})
}

// decode reads a JSON body into v, writing the error response itself on
// failure.
func (g *GameHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := utils.DecodeJSONRequest(w, r, v, int64(g.cfg.MaxPayloadBytes))
	if err == nil {
		return true
	}
	g.log.Debugf("JSON decode error: %v", err)
	if errors.Is(err, errs.ErrPayloadTooLarge) {
		httpresponse.WriteError(g.log, w, err)
	} else {
		httpresponse.WriteResponseWithStatus(g.log, w, http.StatusBadRequest, httpresponse.ErrorResponse{Error: err.Error()})
	}
	return false
}

func (g *GameHandler) respond(w http.ResponseWriter, status int, body any, err error) {
	if err != nil {
		httpresponse.WriteError(g.log, w, err)
		return
	}
	httpresponse.WriteResponseWithStatus(g.log, w, status, body)
}

func (g *GameHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req game.CreateSessionRequest
	if !g.decode(w, r, &req) {
		return
	}
	sess, err := g.gameUC.CreateSession(r.Context(), req)
	g.respond(w, http.StatusCreated, sess, err)
}

func (g *GameHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := g.gameUC.GetSession(r.Context(), chi.URLParam(r, "id"))
	g.respond(w, http.StatusOK, sess, err)
}

func (g *GameHandler) HandleReplace(w http.ResponseWriter, r *http.Request) {
	var req game.ReplaceRequest
	if !g.decode(w, r, &req) {
		return
	}
	sess, err := g.gameUC.ReplaceSession(r.Context(), chi.URLParam(r, "id"), req.PGN)
	g.respond(w, http.StatusOK, sess, err)
}

func (g *GameHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := g.gameUC.DeleteSession(r.Context(), chi.URLParam(r, "id"))
	g.respond(w, http.StatusOK, nil, err)
}

func (g *GameHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	var req game.ResetRequest
	if !g.decode(w, r, &req) {
		return
	}
	sess, err := g.gameUC.ResetSession(r.Context(), chi.URLParam(r, "id"), req.FEN)
	g.respond(w, http.StatusOK, sess, err)
}

func (g *GameHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	sess, err := g.gameUC.SaveSession(r.Context(), chi.URLParam(r, "id"))
	g.respond(w, http.StatusOK, sess, err)
}

func (g *GameHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	err := g.gameUC.CloseSession(r.Context(), chi.URLParam(r, "id"))
	g.respond(w, http.StatusOK, nil, err)
}

func (g *GameHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	var req game.MoveRequest
	if !g.decode(w, r, &req) {
		return
	}
	resp, err := g.gameUC.MakeMove(r.Context(), chi.URLParam(r, "id"), req)
	g.respond(w, http.StatusOK, resp, err)
}

func (g *GameHandler) HandleMoves(w http.ResponseWriter, r *http.Request) {
	var req game.MovesRequest
	if !g.decode(w, r, &req) {
		return
	}
	resp, err := g.gameUC.MakeMoves(r.Context(), chi.URLParam(r, "id"), req)
	g.respond(w, http.StatusOK, resp, err)
}

func (g *GameHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req game.EditRequest
	if !g.decode(w, r, &req) {
		return
	}
	sess, err := g.gameUC.Edit(r.Context(), chi.URLParam(r, "id"), req)
	g.respond(w, http.StatusOK, sess, err)
}

func (g *GameHandler) HandleUndo(w http.ResponseWriter, r *http.Request) {
	sess, err := g.gameUC.Undo(r.Context(), chi.URLParam(r, "id"))
	g.respond(w, http.StatusOK, sess, err)
}

func (g *GameHandler) HandleRedo(w http.ResponseWriter, r *http.Request) {
	sess, err := g.gameUC.Redo(r.Context(), chi.URLParam(r, "id"))
	g.respond(w, http.StatusOK, sess, err)
}

// HandleExport writes the session as PGN. Query flags set to "false"
// switch off headers, variations, annotations, comments or markups;
// nags=numeric writes $n glyphs.
func (g *GameHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	opts := pgn.DefaultEncodeOptions()
	q := r.URL.Query()
	flag := func(name string, dst *bool) {
		if v := q.Get(name); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	flag("headers", &opts.Headers)
	flag("variations", &opts.Variations)
	flag("annotations", &opts.Annotations)
	flag("comments", &opts.Comments)
	flag("markups", &opts.Markups)
	opts.NumericGlyphs = q.Get("nags") == "numeric"

	text, err := g.gameUC.ExportPGN(r.Context(), chi.URLParam(r, "id"), opts)
	if err != nil {
		httpresponse.WriteError(g.log, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-chess-pgn; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write([]byte(text)); err != nil {
		g.log.Debugf("write pgn: %v", err)
	}
}

func (g *GameHandler) HandleTranspositions(w http.ResponseWriter, r *http.Request) {
	list, err := g.gameUC.Transpositions(r.Context(), chi.URLParam(r, "id"))
	g.respond(w, http.StatusOK, list, err)
}

// HandleImport upgrades to a websocket, reads one ImportRequest and streams
// ImportProgress messages until the import ends. Closing the socket cancels
// the import between chunks.
func (g *GameHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := g.gameUC.GetSession(r.Context(), id); err != nil {
		httpresponse.WriteError(g.log, w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Errorf("upgrade error: %v", err)
		return
	}
	defer conn.Close()

	var req game.ImportRequest
	if err = conn.ReadJSON(&req); err != nil {
		g.log.Debugf("read import request: %v", err)
		return
	}
	if req.ChunkSize <= 0 {
		req.ChunkSize = g.cfg.ImportChunkSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		// Any further read (including close) ends the import.
		if _, _, err := conn.ReadMessage(); err != nil {
			cancel()
		}
	}()

	applied, err := g.gameUC.ImportLine(ctx, id, req, func(p game.ImportProgress) {
		if err := conn.WriteJSON(p); err != nil {
			g.log.Debugf("write progress: %v", err)
			cancel()
		}
	})
	if err != nil {
		g.log.Infof("import into %s ended after %d moves: %v", id, applied, err)
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "import done"))
}
