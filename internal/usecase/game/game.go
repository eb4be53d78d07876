package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"opening_tree/internal/domain/chess"
	"opening_tree/internal/domain/game"
	"opening_tree/internal/domain/tree"
	errs "opening_tree/internal/errors"
	"opening_tree/internal/pgn"
	"opening_tree/internal/usecase/moves"
)

// SessionStore is the debounced cache sessions are published to.
type SessionStore interface {
	Register(key string) error
	Unregister(ctx context.Context, key string) error
	Put(key string, st tree.State) error
	Get(ctx context.Context, key string) (tree.State, bool, error)
	Flush(ctx context.Context, key string) error
	Remove(ctx context.Context, key string) error
}

type Options struct {
	HistoryLimit int
	ChunkSize    int
}

type GameUseCase struct {
	store   SessionStore
	applier *moves.Applier
	codec   *pgn.Codec
	log     *zap.SugaredLogger
	opts    Options

	mu       sync.Mutex
	sessions map[string]*gameSession
}

// gameSession serialises writers to one session.
type gameSession struct {
	mu        sync.Mutex
	history   history
	importing bool
}

// effect says what an operation did to the state.
type effect int

const (
	unchanged effect = iota
	// moved changed only the cursor or the report and is not undoable.
	moved
	edited
)

func NewGameUseCase(store SessionStore, applier *moves.Applier, codec *pgn.Codec, log *zap.SugaredLogger, opts Options) *GameUseCase {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 50
	}
	return &GameUseCase{
		store:    store,
		applier:  applier,
		codec:    codec,
		log:      log,
		opts:     opts,
		sessions: make(map[string]*gameSession),
	}
}

// CreateSession starts a session from a PGN or a FEN; both empty means the
// standard start.
func (g *GameUseCase) CreateSession(ctx context.Context, req game.CreateSessionRequest) (game.Session, error) {
	st, err := g.initialState(req)
	if err != nil {
		return game.Session{}, err
	}

	id := uuid.New().String()
	if err = g.store.Register(id); err != nil {
		return game.Session{}, err
	}
	if err = g.store.Put(id, *st); err != nil {
		return game.Session{}, err
	}
	sess := &gameSession{history: history{limit: g.opts.HistoryLimit}}

	g.mu.Lock()
	g.sessions[id] = sess
	g.mu.Unlock()

	g.log.Infof("session %s created (%d nodes)", id, tree.Count(st.Root))
	return g.view(id, sess, *st), nil
}

func (g *GameUseCase) initialState(req game.CreateSessionRequest) (*tree.State, error) {
	if req.PGN != "" {
		return g.codec.Parse(req.PGN)
	}
	fen := req.FEN
	if fen == "" {
		fen = g.applier.Engine().DefaultFEN()
	}
	if _, err := g.applier.Engine().Position(fen); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrInvalidPosition, err)
	}
	return tree.New(fen), nil
}

// session returns the live session, reopening it from durable storage after
// a restart.
func (g *GameUseCase) session(ctx context.Context, id string) (*gameSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if sess, ok := g.sessions[id]; ok {
		return sess, nil
	}

	if err := g.store.Register(id); err != nil {
		return nil, err
	}
	_, ok, err := g.store.Get(ctx, id)
	if err != nil || !ok {
		_ = g.store.Unregister(ctx, id)
		if err == nil {
			err = fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
		}
		return nil, err
	}
	sess := &gameSession{history: history{limit: g.opts.HistoryLimit}}
	g.sessions[id] = sess
	g.log.Infof("session %s reopened from storage", id)
	return sess, nil
}

func (g *GameUseCase) view(id string, sess *gameSession, st tree.State) game.Session {
	return game.Session{
		ID:      id,
		State:   st,
		CanUndo: sess.history.canUndo(),
		CanRedo: sess.history.canRedo(),
	}
}

// update runs fn on a private snapshot of the session under its lock and
// publishes the result. An error from fn discards the snapshot.
func (g *GameUseCase) update(ctx context.Context, id string, fn func(s *tree.State) (effect, error)) (game.Session, error) {
	sess, err := g.session(ctx, id)
	if err != nil {
		return game.Session{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return g.updateLocked(ctx, id, sess, fn)
}

func (g *GameUseCase) updateLocked(ctx context.Context, id string, sess *gameSession, fn func(s *tree.State) (effect, error)) (game.Session, error) {
	prev, ok, err := g.store.Get(ctx, id)
	if err != nil {
		return game.Session{}, err
	}
	if !ok {
		return game.Session{}, fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}

	next := prev.Snapshot()
	eff, err := fn(&next)
	if err != nil {
		return g.view(id, sess, prev), err
	}
	switch eff {
	case unchanged:
		return g.view(id, sess, prev), nil
	case edited:
		sess.history.record(prev)
	}
	if err = g.store.Put(id, next); err != nil {
		return game.Session{}, err
	}
	return g.view(id, sess, next), nil
}

func (g *GameUseCase) GetSession(ctx context.Context, id string) (game.Session, error) {
	return g.update(ctx, id, func(*tree.State) (effect, error) { return unchanged, nil })
}

// ReplaceSession swaps the whole tree for a parsed PGN.
func (g *GameUseCase) ReplaceSession(ctx context.Context, id string, text string) (game.Session, error) {
	parsed, err := g.codec.Parse(text)
	if err != nil {
		return game.Session{}, err
	}
	return g.update(ctx, id, func(s *tree.State) (effect, error) {
		report := s.Report
		*s = *parsed
		s.Report = report
		s.Dirty = true
		return edited, nil
	})
}

// ResetSession drops every move and restarts from fen.
func (g *GameUseCase) ResetSession(ctx context.Context, id string, fen string) (game.Session, error) {
	def := g.applier.Engine().DefaultFEN()
	if fen == "" {
		fen = def
	}
	if _, err := g.applier.Engine().Position(fen); err != nil {
		return game.Session{}, fmt.Errorf("%w: %v", errs.ErrInvalidPosition, err)
	}
	return g.update(ctx, id, func(s *tree.State) (effect, error) {
		s.SetStart(fen, def)
		return edited, nil
	})
}

// SaveSession clears the dirty flag and writes through immediately.
func (g *GameUseCase) SaveSession(ctx context.Context, id string) (game.Session, error) {
	sess, err := g.update(ctx, id, func(s *tree.State) (effect, error) {
		if !s.Dirty {
			return unchanged, nil
		}
		s.Dirty = false
		return moved, nil
	})
	if err != nil {
		return sess, err
	}
	return sess, g.store.Flush(ctx, id)
}

// CloseSession writes pending state and releases the session from memory.
func (g *GameUseCase) CloseSession(ctx context.Context, id string) error {
	g.mu.Lock()
	_, ok := g.sessions[id]
	delete(g.sessions, id)
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}
	return g.store.Unregister(ctx, id)
}

func (g *GameUseCase) DeleteSession(ctx context.Context, id string) error {
	g.mu.Lock()
	delete(g.sessions, id)
	g.mu.Unlock()
	return g.store.Remove(ctx, id)
}

func (g *GameUseCase) Undo(ctx context.Context, id string) (game.Session, error) {
	return g.step(ctx, id, (*history).undo, errs.ErrNothingToUndo)
}

func (g *GameUseCase) Redo(ctx context.Context, id string) (game.Session, error) {
	return g.step(ctx, id, (*history).redo, errs.ErrNothingToRedo)
}

func (g *GameUseCase) step(ctx context.Context, id string, move func(*history, tree.State) (tree.State, bool), empty error) (game.Session, error) {
	sess, err := g.session(ctx, id)
	if err != nil {
		return game.Session{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	cur, ok, err := g.store.Get(ctx, id)
	if err != nil {
		return game.Session{}, err
	}
	if !ok {
		return game.Session{}, fmt.Errorf("%w: %s", errs.ErrSessionNotFound, id)
	}
	target, ok := move(&sess.history, cur)
	if !ok {
		return g.view(id, sess, cur), empty
	}
	// A running import owns the report.
	target.Report = cur.Report
	target.Dirty = true
	if err = g.store.Put(id, target); err != nil {
		return game.Session{}, err
	}
	return g.view(id, sess, target), nil
}

func moveOptions(mainline, updateHeaders bool) moves.Options {
	return moves.Options{Mainline: mainline, UpdateHeaders: updateHeaders}
}

// MakeMove plays one move at the cursor.
func (g *GameUseCase) MakeMove(ctx context.Context, id string, req game.MoveRequest) (game.MoveResponse, error) {
	opts := moveOptions(req.Mainline, req.UpdateHeaders)
	var cue moves.Cue
	sess, err := g.update(ctx, id, func(s *tree.State) (effect, error) {
		root := s.Root
		var err error
		if req.Move == "" && req.From != "" {
			cue, err = g.applier.Play(s, chess.Move{From: req.From, To: req.To, Promotion: req.Promotion}, opts)
		} else {
			cue, err = g.applier.MakeMove(s, req.Move, opts)
		}
		if err != nil {
			return unchanged, err
		}
		if s.Root != root {
			return edited, nil
		}
		return moved, nil
	})
	return game.MoveResponse{Cue: string(cue), State: sess.State}, err
}

// MakeMoves plays a sequence at the cursor, stopping at the first move that
// does not parse.
func (g *GameUseCase) MakeMoves(ctx context.Context, id string, req game.MovesRequest) (game.MovesResponse, error) {
	opts := moveOptions(req.Mainline, req.UpdateHeaders)
	var applied int
	sess, err := g.update(ctx, id, func(s *tree.State) (effect, error) {
		root := s.Root
		var err error
		applied, err = g.applier.MakeMoves(s, req.Moves, opts)
		if err != nil {
			return unchanged, err
		}
		if s.Root != root {
			return edited, nil
		}
		return moved, nil
	})
	return game.MovesResponse{Applied: applied, State: sess.State}, err
}

// Edit applies one tree or cursor operation.
func (g *GameUseCase) Edit(ctx context.Context, id string, req game.EditRequest) (game.Session, error) {
	var path tree.Path
	if req.Path != "" {
		p, err := tree.ParsePath(req.Path)
		if err != nil {
			return game.Session{}, fmt.Errorf("%w: %v", errs.ErrInvalidPath, err)
		}
		path = p
	}

	return g.update(ctx, id, func(s *tree.State) (effect, error) {
		changedIf := func(ok bool) (effect, error) {
			if ok {
				return edited, nil
			}
			return unchanged, nil
		}
		target := path
		if target == nil {
			target = s.Position
		}

		switch req.Op {
		case game.OpComment:
			return changedIf(s.SetComment(req.Text))
		case game.OpAnnotation:
			a, ok := tree.ParseAnnotation(req.Annotation)
			if !ok {
				return unchanged, fmt.Errorf("%w: annotation %q", errs.ErrUnknownOperation, req.Annotation)
			}
			return changedIf(s.ToggleAnnotation(a))
		case game.OpShapes:
			return changedIf(s.SetShapes(req.Shapes))
		case game.OpToggleShape:
			if req.Shape == nil {
				return unchanged, nil
			}
			return changedIf(s.ToggleShape(*req.Shape))
		case game.OpClearShapes:
			return changedIf(s.ClearShapes())
		case game.OpClock:
			var clock *time.Duration
			if req.ClockMs != nil {
				d := time.Duration(*req.ClockMs) * time.Millisecond
				clock = &d
			}
			return changedIf(s.SetClock(clock))
		case game.OpDelete:
			return changedIf(s.DeleteMove(target))
		case game.OpPromote:
			return changedIf(s.PromoteVariation(target))
		case game.OpPromoteToMainline:
			return changedIf(s.PromoteToMainline(target))
		case game.OpHeaders:
			if req.Headers == nil {
				return unchanged, nil
			}
			s.SetHeaders(*req.Headers)
			return edited, nil
		case game.OpGoTo:
			s.GoTo(target)
			return moved, nil
		case game.OpNext:
			s.Next()
			return moved, nil
		case game.OpPrevious:
			s.Previous()
			return moved, nil
		case game.OpStart:
			s.ToStart()
			return moved, nil
		case game.OpEnd:
			s.ToEnd()
			return moved, nil
		}
		return unchanged, fmt.Errorf("%w: %q", errs.ErrUnknownOperation, req.Op)
	})
}

// Transpositions lists the other nodes reaching the cursor's position.
func (g *GameUseCase) Transpositions(ctx context.Context, id string) ([]game.Transposition, error) {
	sess, err := g.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	st := sess.State
	_, depth := tree.Resolve(st.Root, st.Position)
	here := st.Position[:depth]

	var out []game.Transposition
	for _, p := range tree.FindStripped(st.Root, st.Current().FEN) {
		if p.Equal(here) {
			continue
		}
		out = append(out, game.Transposition{Path: p.String(), SAN: tree.NodeAt(st.Root, p).SAN})
	}
	return out, nil
}

// ExportPGN renders the session.
func (g *GameUseCase) ExportPGN(ctx context.Context, id string, opts pgn.EncodeOptions) (string, error) {
	sess, err := g.GetSession(ctx, id)
	if err != nil {
		return "", err
	}
	return pgn.Encode(&sess.State, opts), nil
}
