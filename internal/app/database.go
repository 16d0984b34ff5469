package app

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/tournament-scoring/internal/config"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	dbPingTimeout        = 5 * time.Second
	dbApplicationName    = "tournament-scoring"
	maxTracedQueryLength = 512
)

var (
	queryWhitespaceRegex = regexp.MustCompile(`\s+`)
	queryLiteralRegex    = regexp.MustCompile(`'(?:[^']|'')*'`)
)

// dbTarget is the part of the connection string that is safe to log.
type dbTarget struct {
	Name string
	Host string
}

// openDB opens an instrumented pool so every query becomes a child span of
// the request that issued it.
func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	target := parseDBTarget(cfg.DBURL)
	db, err := otelsqlx.Open("postgres", postgresDSN(cfg.DBURL, cfg.DBDisablePreparedBinaryResult),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(target.Name),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres %s/%s: %w", target.Host, target.Name, err)
	}
	return db, nil
}

// postgresDSN tags URL-style connection strings with the application name
// and, when asked, the pooler workaround flag. Key/value DSNs pass through.
func postgresDSN(raw string, disablePreparedBinaryResult bool) string {
	raw = strings.TrimSpace(raw)
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Get("application_name") == "" {
		query.Set("application_name", dbApplicationName)
	}
	if disablePreparedBinaryResult && query.Get("disable_prepared_binary_result") == "" {
		query.Set("disable_prepared_binary_result", "yes")
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func parseDBTarget(raw string) dbTarget {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		return dbTarget{
			Name: strings.TrimPrefix(parsed.Path, "/"),
			Host: parsed.Hostname(),
		}
	}

	var target dbTarget
	for _, token := range strings.Fields(raw) {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "dbname":
			target.Name = value
		case "host":
			target.Host = value
		}
	}
	return target
}

// formatDBQueryForTrace flattens a query onto one line and masks quoted
// literals so inline values never reach the trace backend.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	query = queryLiteralRegex.ReplaceAllString(query, "'?'")
	query = queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(query) > maxTracedQueryLength {
		return query[:maxTracedQueryLength] + "..."
	}
	return query
}
