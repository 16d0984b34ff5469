package httpapi

import (
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/scoring"
	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

type loginRequest struct {
	AccessCode string `json:"access_code" validate:"required,min=6,max=128"`
}

type createTournamentRequest struct {
	Name         string `json:"name" validate:"required,max=120"`
	Description  string `json:"description" validate:"max=2000"`
	TotalMatches int    `json:"total_matches" validate:"omitempty,min=1,max=100"`
}

type createTeamRequest struct {
	Name string `json:"name" validate:"required,max=80"`
}

type correctScreenshotRequest struct {
	Placement *int `json:"placement" validate:"omitempty,min=1,max=100"`
	Kills     *int `json:"kills" validate:"omitempty,min=0,max=200"`
}

type principalDTO struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	TeamID string `json:"team_id,omitempty"`
}

type loginResponseDTO struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	Principal   principalDTO `json:"principal"`
}

type tournamentDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TotalMatches int       `json:"total_matches"`
	CreatedAt    time.Time `json:"created_at"`
}

type teamDTO struct {
	ID           string    `json:"id"`
	TournamentID string    `json:"tournament_id"`
	Name         string    `json:"name"`
	LogoURL      string    `json:"logo_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type screenshotDTO struct {
	ID           string    `json:"id"`
	TeamID       string    `json:"team_id"`
	TournamentID string    `json:"tournament_id"`
	PlayerID     string    `json:"player_id"`
	Day          int       `json:"day"`
	ImageURL     string    `json:"image_url"`
	Placement    *int      `json:"placement"`
	Kills        *int      `json:"kills"`
	Points       int       `json:"points"`
	Analyzed     bool      `json:"analyzed"`
	CreatedAt    time.Time `json:"created_at"`
}

type uploadOutcomeDTO struct {
	Filename   string           `json:"filename"`
	Status     string           `json:"status"`
	Screenshot *screenshotDTO   `json:"screenshot,omitempty"`
	Error      *googleErrorItem `json:"error,omitempty"`
}

type uploadResultDTO struct {
	Accepted int                `json:"accepted"`
	Failed   int                `json:"failed"`
	Limit    int                `json:"limit"`
	Results  []uploadOutcomeDTO `json:"results"`
}

type galleryDayDTO struct {
	Day         int             `json:"day"`
	Screenshots []screenshotDTO `json:"screenshots"`
}

type galleryTeamDTO struct {
	TeamID   string          `json:"team_id"`
	TeamName string          `json:"team_name,omitempty"`
	LogoURL  string          `json:"logo_url,omitempty"`
	Days     []galleryDayDTO `json:"days"`
}

type standingDTO struct {
	Position      int    `json:"position"`
	TeamID        string `json:"team_id"`
	TeamName      string `json:"team_name"`
	LogoURL       string `json:"logo_url,omitempty"`
	TotalPoints   int    `json:"total_points"`
	TotalKills    int    `json:"total_kills"`
	Wins          int    `json:"wins"`
	MatchesPlayed int    `json:"matches_played"`
}

func principalToDTO(p user.Principal) principalDTO {
	return principalDTO{UserID: p.UserID, Role: string(p.Role), TeamID: p.TeamID}
}

func tournamentToDTO(v tournament.Tournament) tournamentDTO {
	return tournamentDTO{
		ID:           v.ID,
		Name:         v.Name,
		Description:  v.Description,
		TotalMatches: v.TotalMatches,
		CreatedAt:    v.CreatedAt,
	}
}

func teamToDTO(v team.Team) teamDTO {
	return teamDTO{
		ID:           v.ID,
		TournamentID: v.TournamentID,
		Name:         v.Name,
		LogoURL:      v.LogoURL,
		CreatedAt:    v.CreatedAt,
	}
}

func screenshotToDTO(v screenshot.Screenshot) screenshotDTO {
	return screenshotDTO{
		ID:           v.ID,
		TeamID:       v.TeamID,
		TournamentID: v.TournamentID,
		PlayerID:     v.PlayerID,
		Day:          v.Day,
		ImageURL:     v.ImageURL,
		Placement:    v.Placement,
		Kills:        v.Kills,
		Points:       v.Points,
		Analyzed:     v.Analyzed(),
		CreatedAt:    v.CreatedAt,
	}
}

func screenshotsToDTO(items []screenshot.Screenshot) []screenshotDTO {
	out := make([]screenshotDTO, 0, len(items))
	for _, item := range items {
		out = append(out, screenshotToDTO(item))
	}
	return out
}

func standingToDTO(v scoring.Standing) standingDTO {
	return standingDTO{
		Position:      v.Position,
		TeamID:        v.TeamID,
		TeamName:      v.TeamName,
		LogoURL:       v.LogoURL,
		TotalPoints:   v.TotalPoints,
		TotalKills:    v.TotalKills,
		Wins:          v.Wins,
		MatchesPlayed: v.MatchesPlayed,
	}
}

func galleryToDTO(groups []screenshot.TeamGroup, teams map[string]team.Team) []galleryTeamDTO {
	out := make([]galleryTeamDTO, 0, len(groups))
	for _, g := range groups {
		item := galleryTeamDTO{TeamID: g.TeamID, Days: make([]galleryDayDTO, 0, len(g.Days))}
		if t, ok := teams[g.TeamID]; ok {
			item.TeamName = t.Name
			item.LogoURL = t.LogoURL
		}
		for _, d := range g.Days {
			item.Days = append(item.Days, galleryDayDTO{Day: d.Day, Screenshots: screenshotsToDTO(d.Screenshots)})
		}
		out = append(out, item)
	}
	return out
}

func uploadResultToDTO(result usecase.UploadScreenshotsResult) uploadResultDTO {
	out := uploadResultDTO{
		Accepted: result.Accepted,
		Failed:   result.Failed,
		Limit:    screenshot.MaxPerTeam,
		Results:  make([]uploadOutcomeDTO, 0, len(result.Outcomes)),
	}
	for _, o := range result.Outcomes {
		item := uploadOutcomeDTO{Filename: o.Filename}
		if o.Err != nil {
			mapped := mapError(o.Err)
			item.Status = "failed"
			item.Error = &googleErrorItem{Domain: errorDomain, Reason: mapped.Reason, Message: publicMessage(mapped, o.Err)}
		} else {
			dto := screenshotToDTO(*o.Screenshot)
			item.Status = "accepted"
			item.Screenshot = &dto
		}
		out.Results = append(out.Results, item)
	}
	return out
}
