package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/tournament-scoring/internal/domain/accesscode"
	"github.com/riskibarqy/tournament-scoring/internal/domain/screenshot"
	"github.com/riskibarqy/tournament-scoring/internal/domain/team"
	"github.com/riskibarqy/tournament-scoring/internal/domain/tournament"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/account/codehash"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/account/token"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/objectstore"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/tournament-scoring/internal/platform/id"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

const (
	testAdminCode  = "admin-secret-code"
	testPlayerCode = "alpha-player-code"
	testJWTSecret  = "router-test-secret-with-32-bytes!!"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type fakeAnalyzer struct {
	mu     sync.Mutex
	result usecase.AnalysisResult
	calls  int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string) (usecase.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.result, nil
}

type testEnv struct {
	router      http.Handler
	screenshots *memory.ScreenshotRepository
	objects     *objectstore.MemoryStore
	analyzer    *fakeAnalyzer
	tournament  tournament.Tournament
	alpha       team.Team
	bravo       team.Team
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	logger := logging.NewNop()
	store := memory.NewStore()
	tournaments := memory.NewTournamentRepository(store)
	teams := memory.NewTeamRepository(store)
	screenshots := memory.NewScreenshotRepository(store)
	codes := memory.NewAccessCodeRepository(store)
	sessions := memory.NewSessionRepository(store)
	objects := objectstore.NewMemoryStore("http://objects.test")
	analyzer := &fakeAnalyzer{result: usecase.AnalysisResult{Placement: intPtr(1), Kills: intPtr(5)}}
	ids := id.NewUUIDGenerator()

	issuer, err := token.NewIssuer(testJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}

	env := &testEnv{screenshots: screenshots, objects: objects, analyzer: analyzer}
	env.tournament, err = tournaments.Create(ctx, tournament.Tournament{ID: "tour-1", Name: "Spring Cup", TotalMatches: 12, CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("seed tournament: %v", err)
	}
	env.alpha, err = teams.Create(ctx, team.Team{ID: "team-alpha", TournamentID: "tour-1", Name: "Alpha", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("seed alpha: %v", err)
	}
	env.bravo, err = teams.Create(ctx, team.Team{ID: "team-bravo", TournamentID: "tour-1", Name: "Bravo", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("seed bravo: %v", err)
	}

	seedCode(t, codes, "code-admin", testAdminCode, user.RoleAdmin, "")
	seedCode(t, codes, "code-alpha", testPlayerCode, user.RolePlayer, "team-alpha")

	authService := usecase.NewAuthService(codes, sessions, issuer, ids, logger)
	standings := usecase.NewStandingService(tournaments, teams, screenshots, 0, logger)
	handler := NewHandler(
		authService,
		usecase.NewTournamentService(tournaments, teams, screenshots, objects, ids, standings, logger),
		usecase.NewTeamService(tournaments, teams, screenshots, objects, ids, standings, 1<<20, logger),
		usecase.NewScreenshotService(tournaments, teams, screenshots, objects, analyzer, ids, standings, 1<<20, logger),
		standings,
		usecase.NewReanalysisService(tournaments, screenshots, analyzer, standings, 2, logger),
		UploadLimits{MaxFileBytes: 1 << 20, MaxLogoBytes: 1 << 20, MaxFiles: 12},
		logger,
	)
	env.router = NewRouter(handler, authService, logger, true, []string{"*"}, objects)
	return env
}

func seedCode(t *testing.T, repo accesscode.Repository, codeID, code string, role user.Role, teamID string) {
	t.Helper()

	hash, err := codehash.Hash(code)
	if err != nil {
		t.Fatalf("hash code: %v", err)
	}
	err = repo.Create(context.Background(), accesscode.AccessCode{
		ID:        codeID,
		CodeHash:  hash,
		Role:      role,
		TeamID:    teamID,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("seed code: %v", err)
	}
}

func intPtr(v int) *int {
	return &v
}

type envelope struct {
	APIVersion string              `json:"apiVersion"`
	Data       jsoniter.RawMessage `json:"data"`
	Error      *googleErrorBody    `json:"error"`
}

func (e *testEnv) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var body envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := jsoniter.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode envelope: %v body=%s", err, rec.Body.String())
		}
	}
	return rec, body
}

func (e *testEnv) login(t *testing.T, code string) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(`{"access_code":"`+code+`"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, body := e.do(t, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", rec.Code, rec.Body.String())
	}

	var data loginResponseDTO
	if err := jsoniter.Unmarshal(body.Data, &data); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	return data.AccessToken
}

func authed(req *http.Request, accessToken string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+accessToken)
	return req
}

func jsonRequest(method, target, payload string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func uploadRequest(t *testing.T, teamID, day string, files int) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if day != "" {
		if err := mw.WriteField("day", day); err != nil {
			t.Fatalf("write day: %v", err)
		}
	}
	for i := 0; i < files; i++ {
		part, err := mw.CreateFormFile("files", fmt.Sprintf("match-%02d.png", i+1))
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(pngBytes); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/teams/"+teamID+"/screenshots", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestRouter_HealthzIsPublic(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec, _ := env.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRouter_LoginAndMe(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	accessToken := env.login(t, testPlayerCode)

	rec, body := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil), accessToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	var me principalDTO
	if err := jsoniter.Unmarshal(body.Data, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.Role != "player" || me.TeamID != "team-alpha" || me.UserID != "code-alpha" {
		t.Fatalf("unexpected principal: %+v", me)
	}
}

func TestRouter_LoginRejectsUnknownCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec, body := env.do(t, jsonRequest(http.MethodPost, "/v1/auth/login", `{"access_code":"not-a-real-code"}`))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if body.Error == nil || body.Error.Status != "UNAUTHENTICATED" {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}
}

func TestRouter_LogoutRevokesSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	accessToken := env.login(t, testPlayerCode)

	rec, _ := env.do(t, authed(httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil), accessToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status=%d", rec.Code)
	}

	rec, _ = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/v1/auth/me", nil), accessToken))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token to be rejected, got %d", rec.Code)
	}
}

func TestRouter_ReadRoutesRequireAuth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for _, target := range []string{
		"/v1/tournaments",
		"/v1/tournaments/tour-1/standings",
		"/v1/tournaments/tour-1/gallery",
		"/v1/teams/team-alpha",
	} {
		rec, _ := env.do(t, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", target, rec.Code)
		}
	}
}

func TestRouter_AdminRoutesRejectPlayers(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	accessToken := env.login(t, testPlayerCode)

	rec, body := env.do(t, authed(jsonRequest(http.MethodPost, "/v1/tournaments", `{"name":"Summer Cup"}`), accessToken))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if body.Error == nil || body.Error.Status != "PERMISSION_DENIED" {
		t.Fatalf("unexpected error body: %+v", body.Error)
	}

	rec, _ = env.do(t, authed(httptest.NewRequest(http.MethodDelete, "/v1/teams/team-bravo", nil), accessToken))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected delete team to be forbidden, got %d", rec.Code)
	}
}

func TestRouter_AdminCreatesTournamentAndTeam(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	accessToken := env.login(t, testAdminCode)

	rec, body := env.do(t, authed(jsonRequest(http.MethodPost, "/v1/tournaments", `{"name":"Summer Cup","description":"finals"}`), accessToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tournament status=%d body=%s", rec.Code, rec.Body.String())
	}
	var created tournamentDTO
	if err := jsoniter.Unmarshal(body.Data, &created); err != nil {
		t.Fatalf("decode tournament: %v", err)
	}
	if created.ID == "" || created.TotalMatches != tournament.DefaultTotalMatches {
		t.Fatalf("unexpected tournament: %+v", created)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "Charlie")
	part, err := mw.CreateFormFile("logo", "logo.png")
	if err != nil {
		t.Fatalf("create logo part: %v", err)
	}
	_, _ = part.Write(pngBytes)
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/tournaments/"+created.ID+"/teams", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, body = env.do(t, authed(req, accessToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create team status=%d body=%s", rec.Code, rec.Body.String())
	}
	var createdTeam teamDTO
	if err := jsoniter.Unmarshal(body.Data, &createdTeam); err != nil {
		t.Fatalf("decode team: %v", err)
	}
	if createdTeam.Name != "Charlie" || !strings.HasPrefix(createdTeam.LogoURL, "http://objects.test/") {
		t.Fatalf("unexpected team: %+v", createdTeam)
	}
	if env.objects.Len() != 1 {
		t.Fatalf("expected logo to be stored, objects=%d", env.objects.Len())
	}
}

func TestRouter_CreateTournamentRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	accessToken := env.login(t, testAdminCode)

	rec, _ := env.do(t, authed(jsonRequest(http.MethodPost, "/v1/tournaments", `{"name":"Cup","prize":100}`), accessToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}

func TestRouter_UploadScoresAndFeedsStandings(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	accessToken := env.login(t, testPlayerCode)

	rec, body := env.do(t, authed(uploadRequest(t, "team-alpha", "1", 2), accessToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status=%d body=%s", rec.Code, rec.Body.String())
	}
	var result uploadResultDTO
	if err := jsoniter.Unmarshal(body.Data, &result); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	if result.Accepted != 2 || result.Failed != 0 || result.Limit != screenshot.MaxPerTeam {
		t.Fatalf("unexpected upload result: %+v", result)
	}
	for _, item := range result.Results {
		if item.Screenshot == nil || item.Screenshot.Points != 15 || item.Screenshot.Day != 1 {
			t.Fatalf("unexpected outcome: %+v", item)
		}
	}

	rec, body = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/v1/tournaments/tour-1/standings", nil), accessToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("standings status=%d", rec.Code)
	}
	var table []standingDTO
	if err := jsoniter.Unmarshal(body.Data, &table); err != nil {
		t.Fatalf("decode standings: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected both teams in standings, got %d", len(table))
	}
	top := table[0]
	if top.TeamID != "team-alpha" || top.TotalPoints != 30 || top.TotalKills != 10 || top.Wins != 2 || top.Position != 1 {
		t.Fatalf("unexpected leader: %+v", top)
	}
	if table[1].TotalPoints != 0 || table[1].MatchesPlayed != 0 {
		t.Fatalf("unexpected runner-up: %+v", table[1])
	}
}

func TestRouter_UploadRejectsInvalidDay(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	accessToken := env.login(t, testPlayerCode)

	for _, day := range []string{"0", "4", "two", ""} {
		rec, body := env.do(t, authed(uploadRequest(t, "team-alpha", day, 1), accessToken))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("day %q: unexpected status %d", day, rec.Code)
		}
		if body.Error == nil || body.Error.Errors[0].Reason != "invalidDay" {
			t.Fatalf("day %q: unexpected error %+v", day, body.Error)
		}
	}
	if env.analyzer.calls != 0 {
		t.Fatalf("analyzer should not run for rejected days")
	}
}

func TestRouter_UploadForOtherTeamIsForbidden(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	accessToken := env.login(t, testPlayerCode)

	rec, _ := env.do(t, authed(uploadRequest(t, "team-bravo", "1", 1), accessToken))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if env.objects.Len() != 0 {
		t.Fatalf("no object should be stored for a forbidden upload")
	}
}

func TestRouter_UploadBeyondLimitIsRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < screenshot.MaxPerTeam-1; i++ {
		_, err := env.screenshots.CreateWithinLimit(ctx, screenshot.Screenshot{
			ID:           fmt.Sprintf("seed-%02d", i),
			TeamID:       "team-alpha",
			TournamentID: "tour-1",
			PlayerID:     "code-alpha",
			Day:          1,
			ImageKey:     fmt.Sprintf("screenshots/team-alpha/1/seed-%02d.png", i),
			CreatedAt:    time.Now().UTC(),
		}, screenshot.MaxPerTeam)
		if err != nil {
			t.Fatalf("seed screenshot: %v", err)
		}
	}

	accessToken := env.login(t, testPlayerCode)
	rec, body := env.do(t, authed(uploadRequest(t, "team-alpha", "2", 2), accessToken))
	if rec.Code != http.StatusConflict {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if body.Error.Errors[0].Reason != "screenshotLimitReached" {
		t.Fatalf("unexpected reason: %+v", body.Error)
	}

	rec, _ = env.do(t, authed(uploadRequest(t, "team-alpha", "2", 1), accessToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("last slot should be accepted, got %d", rec.Code)
	}
	rec, _ = env.do(t, authed(uploadRequest(t, "team-alpha", "3", 1), accessToken))
	if rec.Code != http.StatusConflict {
		t.Fatalf("thirteenth screenshot should be rejected, got %d", rec.Code)
	}
}

func TestRouter_AdminCorrectsScreenshot(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.analyzer.result = usecase.AnalysisResult{}
	playerToken := env.login(t, testPlayerCode)
	adminToken := env.login(t, testAdminCode)

	rec, body := env.do(t, authed(uploadRequest(t, "team-alpha", "1", 1), playerToken))
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status=%d", rec.Code)
	}
	var result uploadResultDTO
	if err := jsoniter.Unmarshal(body.Data, &result); err != nil {
		t.Fatalf("decode upload: %v", err)
	}
	shot := result.Results[0].Screenshot
	if shot.Analyzed || shot.Points != 0 {
		t.Fatalf("expected unanalyzed screenshot, got %+v", shot)
	}

	rec, body = env.do(t, authed(jsonRequest(http.MethodPatch, "/v1/screenshots/"+shot.ID, `{"placement":3,"kills":4}`), adminToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("correct status=%d body=%s", rec.Code, rec.Body.String())
	}
	var corrected screenshotDTO
	if err := jsoniter.Unmarshal(body.Data, &corrected); err != nil {
		t.Fatalf("decode corrected: %v", err)
	}
	if corrected.Points != 9 || !corrected.Analyzed {
		t.Fatalf("unexpected correction: %+v", corrected)
	}

	rec, _ = env.do(t, authed(jsonRequest(http.MethodPatch, "/v1/screenshots/"+shot.ID, `{}`), adminToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty correction should be rejected, got %d", rec.Code)
	}
}

func TestRouter_GalleryGroupsByTeamAndDay(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	playerToken := env.login(t, testPlayerCode)

	for _, day := range []string{"2", "1", "2"} {
		rec, _ := env.do(t, authed(uploadRequest(t, "team-alpha", day, 1), playerToken))
		if rec.Code != http.StatusCreated {
			t.Fatalf("upload day %s status=%d", day, rec.Code)
		}
	}

	rec, body := env.do(t, authed(httptest.NewRequest(http.MethodGet, "/v1/tournaments/tour-1/gallery", nil), playerToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("gallery status=%d", rec.Code)
	}
	var groups []galleryTeamDTO
	if err := jsoniter.Unmarshal(body.Data, &groups); err != nil {
		t.Fatalf("decode gallery: %v", err)
	}
	if len(groups) != 1 || groups[0].TeamName != "Alpha" || len(groups[0].Days) != 2 {
		t.Fatalf("unexpected gallery: %+v", groups)
	}
	if groups[0].Days[0].Day != 1 || len(groups[0].Days[1].Screenshots) != 2 {
		t.Fatalf("unexpected day grouping: %+v", groups[0].Days)
	}

	rec, body = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/v1/tournaments/tour-1/screenshots?day=2", nil), playerToken))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status=%d", rec.Code)
	}
	var listed []screenshotDTO
	if err := jsoniter.Unmarshal(body.Data, &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 day-2 screenshots, got %d", len(listed))
	}

	rec, _ = env.do(t, authed(httptest.NewRequest(http.MethodGet, "/v1/tournaments/tour-1/screenshots?day=5", nil), playerToken))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid day filter should be rejected, got %d", rec.Code)
	}
}

func TestRouter_ServesStoredObjects(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	if _, err := env.objects.Put(context.Background(), "logos/team-alpha.png", bytes.NewReader(pngBytes), int64(len(pngBytes)), "image/png"); err != nil {
		t.Fatalf("put object: %v", err)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/objects/logos/team-alpha.png", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Fatalf("unexpected content type: %q", got)
	}
	got, _ := io.ReadAll(rec.Body)
	if !bytes.Equal(got, pngBytes) {
		t.Fatalf("unexpected body")
	}

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/objects/missing.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_SwaggerServesSpec(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Tournament Scoring API") {
		t.Fatalf("unexpected openapi response: %d", rec.Code)
	}
}
