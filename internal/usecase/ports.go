package usecase

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/session"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
)

// ObjectStore keeps uploaded images and hands out their public URLs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (StoredObject, error)
	Delete(ctx context.Context, key string) error
}

type StoredObject struct {
	Key string
	URL string
}

// AnalysisResult holds what the image analyzer could read. Either field
// is nil when extraction failed for it.
type AnalysisResult struct {
	Placement *int
	Kills     *int
}

type ScreenshotAnalyzer interface {
	Analyze(ctx context.Context, imageURL string) (AnalysisResult, error)
}

type TokenClaims struct {
	SessionID string
	UserID    string
	Role      user.Role
	TeamID    string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies bearer tokens bound to a session.
type TokenIssuer interface {
	Issue(ctx context.Context, s session.Session) (token string, expiresAt time.Time, err error)
	Verify(ctx context.Context, token string) (TokenClaims, error)
}

type IDGenerator interface {
	NewID() (string, error)
}

// StandingsInvalidator drops cached standings after writes that change them.
type StandingsInvalidator interface {
	InvalidateStandings(tournamentID string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateStandings(string) {}

// FileUpload is one file received from a multipart form.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

// imageExtension returns the object key extension for an image upload, or
// false when the content type is not an accepted image.
func imageExtension(f FileUpload) (string, bool) {
	contentType := strings.ToLower(strings.TrimSpace(f.ContentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", false
	}
	if fromName := strings.ToLower(path.Ext(f.Filename)); fromName != "" {
		for _, known := range imageExtensions {
			if known == fromName {
				return fromName, true
			}
		}
		if fromName == ".jpeg" {
			return ".jpg", true
		}
	}
	return ext, true
}
