package httpapi

import (
	"net/http"

	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
)

// NewRouter wires every route behind tracing, request logging, CORS and
// panic recovery. objects may be nil; when set, stored images are served
// under /objects/.
func NewRouter(
	handler *Handler,
	verifier TokenVerifier,
	logger *logging.Logger,
	swaggerEnabled bool,
	corsAllowedOrigins []string,
	objects ObjectReader,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("http")

	authed := func(h http.HandlerFunc) http.Handler { return RequireAuth(verifier, h) }
	admin := func(h http.HandlerFunc) http.Handler { return RequireAuth(verifier, RequireAdmin(h)) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if swaggerEnabled {
		mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
		mux.HandleFunc("GET /docs", handler.SwaggerUI)
	}
	if objects != nil {
		mux.Handle("GET /objects/{key...}", serveObjects(objects))
	}

	mux.HandleFunc("POST /v1/auth/login", handler.Login)
	mux.Handle("POST /v1/auth/logout", authed(handler.Logout))
	mux.Handle("GET /v1/auth/me", authed(handler.Me))

	mux.Handle("GET /v1/tournaments", authed(handler.ListTournaments))
	mux.Handle("GET /v1/tournaments/{tournamentID}", authed(handler.GetTournament))
	mux.Handle("GET /v1/tournaments/{tournamentID}/teams", authed(handler.ListTeams))
	mux.Handle("GET /v1/tournaments/{tournamentID}/standings", authed(handler.ListStandings))
	mux.Handle("GET /v1/tournaments/{tournamentID}/screenshots", authed(handler.ListScreenshots))
	mux.Handle("GET /v1/tournaments/{tournamentID}/gallery", authed(handler.Gallery))
	mux.Handle("GET /v1/teams/{teamID}", authed(handler.GetTeam))

	// Players upload for their own team only; the service checks ownership.
	mux.Handle("POST /v1/teams/{teamID}/screenshots", authed(handler.UploadScreenshots))

	mux.Handle("POST /v1/tournaments", admin(handler.CreateTournament))
	mux.Handle("DELETE /v1/tournaments/{tournamentID}", admin(handler.DeleteTournament))
	mux.Handle("POST /v1/tournaments/{tournamentID}/teams", admin(handler.CreateTeam))
	mux.Handle("POST /v1/tournaments/{tournamentID}/reanalyze", admin(handler.ReanalyzeTournament))
	mux.Handle("DELETE /v1/teams/{teamID}", admin(handler.DeleteTeam))
	mux.Handle("PATCH /v1/screenshots/{screenshotID}", admin(handler.CorrectScreenshot))
	mux.Handle("DELETE /v1/screenshots/{screenshotID}", admin(handler.DeleteScreenshot))

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}
