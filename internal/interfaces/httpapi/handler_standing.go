package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListStandings")
	defer span.End()

	items, err := h.standingService.ListByTournament(ctx, strings.TrimSpace(r.PathValue("tournamentID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]standingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, standingToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ReanalyzeTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReanalyzeTournament")
	defer span.End()

	result, err := h.reanalysisService.Reanalyze(ctx, strings.TrimSpace(r.PathValue("tournamentID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
