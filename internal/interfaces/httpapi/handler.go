package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	"github.com/riskibarqy/tournament-scoring/internal/usecase"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const maxJSONBodyBytes = 1 << 20

var apiTracer = otel.Tracer("tournament-scoring/internal/interfaces/httpapi")

// startSpan opens a handler span under the otelhttp request span. Requests
// that were not traced, such as /healthz, get the no-op span in ctx.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return apiTracer.Start(ctx, name)
}

// UploadLimits bounds multipart requests before they reach the services.
type UploadLimits struct {
	MaxFileBytes int64
	MaxLogoBytes int64
	MaxFiles     int
}

func (l UploadLimits) normalized() UploadLimits {
	if l.MaxFileBytes <= 0 {
		l.MaxFileBytes = 10 << 20
	}
	if l.MaxLogoBytes <= 0 {
		l.MaxLogoBytes = 2 << 20
	}
	if l.MaxFiles <= 0 {
		l.MaxFiles = 12
	}
	return l
}

type Handler struct {
	authService       *usecase.AuthService
	tournamentService *usecase.TournamentService
	teamService       *usecase.TeamService
	screenshotService *usecase.ScreenshotService
	standingService   *usecase.StandingService
	reanalysisService *usecase.ReanalysisService
	limits            UploadLimits
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	authService *usecase.AuthService,
	tournamentService *usecase.TournamentService,
	teamService *usecase.TeamService,
	screenshotService *usecase.ScreenshotService,
	standingService *usecase.StandingService,
	reanalysisService *usecase.ReanalysisService,
	limits UploadLimits,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		authService:       authService,
		tournamentService: tournamentService,
		teamService:       teamService,
		screenshotService: screenshotService,
		standingService:   standingService,
		reanalysisService: reanalysisService,
		limits:            limits.normalized(),
		logger:            logger.Named("httpapi"),
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON reads a bounded JSON body into dst and validates it.
func (h *Handler) decodeJSON(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	decoder := jsoniter.NewDecoder(body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: missing principal", usecase.ErrUnauthorized)
	}
	return principal, nil
}
