package game

import (
	"context"
	"fmt"

	"opening_tree/internal/domain/game"
	"opening_tree/internal/domain/tree"
	errs "opening_tree/internal/errors"
	"opening_tree/internal/usecase/moves"
)

// ProgressFunc is called after every chunk.
type ProgressFunc func(p game.ImportProgress)

// ImportLine applies a long move list in chunks. Each chunk is one atomic
// mutation; cancellation is checked only between chunks. The report flag is
// set while the import runs. The import stops early at the first move that
// does not apply.
func (g *GameUseCase) ImportLine(ctx context.Context, id string, req game.ImportRequest, progress ProgressFunc) (int, error) {
	total := len(req.Moves)
	applied := 0
	report := func(done bool, err error) {
		if progress == nil {
			return
		}
		p := game.ImportProgress{Applied: applied, Total: total, Done: done, Progress: 1}
		if total > 0 {
			p.Progress = float64(applied) / float64(total)
		}
		if err != nil {
			p.Error = err.Error()
		}
		progress(p)
	}

	sess, err := g.session(ctx, id)
	if err != nil {
		report(true, err)
		return 0, err
	}

	sess.mu.Lock()
	if sess.importing {
		sess.mu.Unlock()
		err = fmt.Errorf("%w: %s", errs.ErrImportInProgress, id)
		report(true, err)
		return 0, err
	}
	sess.importing = true
	_, err = g.updateLocked(ctx, id, sess, func(s *tree.State) (effect, error) {
		s.SetReport(tree.Report{InProgress: true})
		return moved, nil
	})
	sess.mu.Unlock()
	if err != nil {
		g.finishImport(id, sess, tree.Report{})
		report(true, err)
		return 0, err
	}

	chunk := req.ChunkSize
	if chunk <= 0 {
		chunk = g.opts.ChunkSize
	}
	opts := moves.Options{Mainline: req.Mainline}

	for applied < total {
		if err = ctx.Err(); err != nil {
			g.log.Infof("import into %s cancelled after %d of %d moves", id, applied, total)
			g.finishImport(id, sess, tree.Report{Progress: float64(applied) / float64(total)})
			report(true, err)
			return applied, err
		}

		end := min(applied+chunk, total)
		part := req.Moves[applied:end]
		n := 0
		_, err = g.update(ctx, id, func(s *tree.State) (effect, error) {
			root := s.Root
			var err error
			n, err = g.applier.MakeMoves(s, part, opts)
			if err != nil {
				return unchanged, err
			}
			s.SetReport(tree.Report{InProgress: true, Progress: float64(applied+n) / float64(total)})
			if s.Root != root {
				return edited, nil
			}
			return moved, nil
		})
		if err != nil {
			g.finishImport(id, sess, tree.Report{})
			report(true, err)
			return applied, err
		}
		applied += n
		if n < len(part) {
			g.log.Infof("import into %s stopped at move %d (%q)", id, applied, req.Moves[applied])
			break
		}
		report(false, nil)
	}

	g.finishImport(id, sess, tree.Report{Completed: true, Progress: 1})
	report(true, nil)
	return applied, nil
}

// finishImport clears the importing mark and publishes the final report. It
// uses a fresh context so a cancelled import still records its outcome.
func (g *GameUseCase) finishImport(id string, sess *gameSession, r tree.Report) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.importing = false
	if _, err := g.updateLocked(context.Background(), id, sess, func(s *tree.State) (effect, error) {
		s.SetReport(r)
		return moved, nil
	}); err != nil {
		g.log.Warnf("publish import report for %s: %v", id, err)
	}
}

// IngestAnalysis stores an engine result on the node at req.Path and adds
// its principal variation below that node as a side line. The cursor stays
// where it was.
func (g *GameUseCase) IngestAnalysis(ctx context.Context, id string, req game.AnalysisRequest) (game.AnalysisResponse, error) {
	path, err := tree.ParsePath(req.Path)
	if err != nil {
		return game.AnalysisResponse{}, fmt.Errorf("%w: %v", errs.ErrInvalidPath, err)
	}

	var score *tree.Score
	if req.CP != nil || req.Mate != nil {
		score = &tree.Score{CP: req.CP, Mate: req.Mate, Depth: req.Depth}
	}

	added := 0
	sess, err := g.update(ctx, id, func(s *tree.State) (effect, error) {
		if tree.NodeAt(s.Root, path) == nil {
			return unchanged, fmt.Errorf("%w: %s", errs.ErrInvalidPath, path)
		}
		eff := unchanged
		if score != nil && s.SetScoreAt(path, score) {
			eff = edited
		}
		if len(req.PV) == 0 {
			return eff, nil
		}

		cursor := s.Position.Clone()
		root := s.Root
		s.Position = path.Clone()
		n, err := g.applier.MakeMoves(s, req.PV, moves.Options{})
		// New lines are appended after existing children, so the old cursor
		// still resolves.
		s.Position = cursor
		if err != nil {
			return unchanged, err
		}
		added = n
		if s.Root != root {
			eff = edited
		}
		return eff, nil
	})
	return game.AnalysisResponse{Added: added, State: sess.State}, err
}
