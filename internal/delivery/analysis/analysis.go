package analysis

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"opening_tree/internal/bootstrap"
	"opening_tree/internal/domain/game"
	errs "opening_tree/internal/errors"
	"opening_tree/internal/httpresponse"
	gameuc "opening_tree/internal/usecase/game"
	"opening_tree/internal/utils"
)

// AnalysisHandler accepts results from an external engine. Nothing is
// computed here.
type AnalysisHandler struct {
	cfg    bootstrap.Config
	log    *zap.SugaredLogger
	gameUC *gameuc.GameUseCase
}

func NewAnalysisHandler(cfg bootstrap.Config, log *zap.SugaredLogger, gameUC *gameuc.GameUseCase) *AnalysisHandler {
	return &AnalysisHandler{
		cfg:    cfg,
		log:    log,
		gameUC: gameUC,
	}
}

func (a *AnalysisHandler) Routes(r chi.Router) {
	r.Post("/sessions/{id}/analysis", a.HandleIngest)
}

func (a *AnalysisHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req game.AnalysisRequest
	if err := utils.DecodeJSONRequest(w, r, &req, int64(a.cfg.MaxPayloadBytes)); err != nil {
		if errors.Is(err, errs.ErrPayloadTooLarge) {
			httpresponse.WriteError(a.log, w, err)
			return
		}
		httpresponse.WriteResponseWithStatus(a.log, w, http.StatusBadRequest, httpresponse.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := a.gameUC.IngestAnalysis(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpresponse.WriteError(a.log, w, err)
		return
	}
	a.log.Debugf("analysis for %s at %q: %d pv moves", chi.URLParam(r, "id"), req.Path, resp.Added)
	httpresponse.WriteResponseWithStatus(a.log, w, http.StatusOK, resp)
}
