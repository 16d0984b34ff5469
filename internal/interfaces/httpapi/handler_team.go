package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	items, err := h.teamService.ListByTournament(ctx, strings.TrimSpace(r.PathValue("tournamentID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]teamDTO, 0, len(items))
	for _, item := range items {
		out = append(out, teamToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeam")
	defer span.End()

	item, err := h.teamService.Get(ctx, strings.TrimSpace(r.PathValue("teamID")))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, teamToDTO(item))
}

// CreateTeam accepts either a JSON body or a multipart form carrying a
// name field and an optional logo file.
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateTeam")
	defer span.End()

	input := usecase.CreateTeamInput{TournamentID: strings.TrimSpace(r.PathValue("tournamentID"))}

	if isMultipart(r) {
		if err := parseMultipart(w, r, h.limits.MaxLogoBytes+multipartOverhead); err != nil {
			writeError(ctx, w, err)
			return
		}
		defer cleanupMultipart(r)

		req := createTeamRequest{Name: strings.TrimSpace(r.FormValue("name"))}
		if err := h.validateRequest(ctx, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
		input.Name = req.Name

		logos := formFiles(r, "logo")
		if len(logos) > 1 {
			writeError(ctx, w, fmt.Errorf("%w: at most one logo file is allowed", usecase.ErrInvalidInput))
			return
		}
		if len(logos) == 1 {
			opened, err := openUploads(logos)
			if err != nil {
				writeError(ctx, w, err)
				return
			}
			defer opened.Close()
			input.Logo = &opened.files[0]
		}
	} else {
		var req createTeamRequest
		if err := h.decodeJSON(ctx, w, r, &req); err != nil {
			writeError(ctx, w, err)
			return
		}
		input.Name = req.Name
	}

	item, err := h.teamService.Create(ctx, input)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, teamToDTO(item))
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteTeam")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	if err := h.teamService.Delete(ctx, teamID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": teamID, "deleted": true})
}
