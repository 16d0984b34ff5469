package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/tournament-scoring/internal/usecase"
)

// ObjectReader exposes stored objects for local development when no
// public bucket URL exists.
type ObjectReader interface {
	Get(key string) ([]byte, string, bool)
}

func serveObjects(objects ObjectReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := strings.TrimPrefix(r.PathValue("key"), "/")
		body, contentType, ok := objects.Get(key)
		if !ok {
			writeError(ctx, w, fmt.Errorf("%w: object %q", usecase.ErrNotFound, key))
			return
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	})
}
