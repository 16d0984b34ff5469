package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

func (h *Handler) UploadScreenshots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UploadScreenshots")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !isMultipart(r) {
		writeError(ctx, w, fmt.Errorf("%w: multipart/form-data is required", usecase.ErrInvalidInput))
		return
	}

	maxBody := h.limits.MaxFileBytes*int64(h.limits.MaxFiles) + multipartOverhead
	if err := parseMultipart(w, r, maxBody); err != nil {
		writeError(ctx, w, err)
		return
	}
	defer cleanupMultipart(r)

	day, err := parseDay(r.FormValue("day"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	headers := formFiles(r, "files", "files[]", "file")
	if len(headers) == 0 {
		writeError(ctx, w, fmt.Errorf("%w: at least one file is required", usecase.ErrInvalidInput))
		return
	}
	if len(headers) > h.limits.MaxFiles {
		writeError(ctx, w, fmt.Errorf("%w: at most %d files per request", usecase.ErrInvalidInput, h.limits.MaxFiles))
		return
	}

	opened, err := openUploads(headers)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	defer opened.Close()

	result, err := h.screenshotService.Upload(ctx, usecase.UploadScreenshotsInput{
		Principal: principal,
		TeamID:    strings.TrimSpace(r.PathValue("teamID")),
		Day:       day,
		Files:     opened.files,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if result.Failed == 0 {
		writeSuccess(ctx, w, http.StatusCreated, uploadResultToDTO(result))
		return
	}
	if len(result.Outcomes) == 1 {
		writeError(ctx, w, result.Outcomes[0].Err)
		return
	}
	writeSuccess(ctx, w, http.StatusMultiStatus, uploadResultToDTO(result))
}

func (h *Handler) ListScreenshots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListScreenshots")
	defer span.End()

	filter, err := screenshotFilterFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.screenshotService.List(ctx, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, screenshotsToDTO(items))
}

func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Gallery")
	defer span.End()

	filter, err := screenshotFilterFromRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	groups, err := h.screenshotService.Gallery(ctx, filter)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	teams, err := h.teamService.ListByTournament(ctx, filter.TournamentID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	byID := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		byID[t.ID] = t
	}

	writeSuccess(ctx, w, http.StatusOK, galleryToDTO(groups, byID))
}

func (h *Handler) CorrectScreenshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CorrectScreenshot")
	defer span.End()

	var req correctScreenshotRequest
	if err := h.decodeJSON(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.Placement == nil && req.Kills == nil {
		writeError(ctx, w, fmt.Errorf("%w: placement or kills is required", usecase.ErrInvalidInput))
		return
	}

	item, err := h.screenshotService.Correct(ctx, usecase.CorrectScreenshotInput{
		ScreenshotID: strings.TrimSpace(r.PathValue("screenshotID")),
		Placement:    req.Placement,
		Kills:        req.Kills,
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, screenshotToDTO(item))
}

func (h *Handler) DeleteScreenshot(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteScreenshot")
	defer span.End()

	screenshotID := strings.TrimSpace(r.PathValue("screenshotID"))
	if err := h.screenshotService.Delete(ctx, screenshotID); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": screenshotID, "deleted": true})
}

func screenshotFilterFromRequest(r *http.Request) (screenshot.Filter, error) {
	filter := screenshot.Filter{
		TournamentID: strings.TrimSpace(r.PathValue("tournamentID")),
		TeamID:       strings.TrimSpace(r.URL.Query().Get("team_id")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("day")); raw != "" {
		day, err := parseDay(raw)
		if err != nil {
			return screenshot.Filter{}, err
		}
		filter.Day = day
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("unanalyzed")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return screenshot.Filter{}, fmt.Errorf("%w: unanalyzed must be a boolean", usecase.ErrInvalidInput)
		}
		filter.OnlyUnanalyzed = v
	}
	return filter, nil
}

func parseDay(raw string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: got %q", screenshot.ErrInvalidDay, raw)
	}
	if err := screenshot.ValidateDay(day); err != nil {
		return 0, err
	}
	return day, nil
}
