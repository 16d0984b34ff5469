// Command seedcodes creates access codes in Postgres. The plaintext code is
// printed once; only its bcrypt hash is stored.
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/tournament-scoring/internal/domain/accesscode"
	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/account/codehash"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/tournament-scoring/internal/platform/id"
	"github.com/riskibarqy/tournament-scoring/internal/platform/logging"
	flag "github.com/spf13/pflag"
)

const (
	generatedCodeLength = 10
	// Ambiguous glyphs (0/O, 1/l/I) are left out so codes can be read aloud.
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

type options struct {
	dbURL  string
	role   string
	teamID string
	label  string
	code   string
	dryRun bool
}

func main() {
	logger := logging.New(logging.FormatConsole, logging.ParseLevel("info"))
	defer func() { _ = logger.Sync() }()

	var opts options
	fs := flag.NewFlagSet("seedcodes", flag.ExitOnError)
	fs.StringVar(&opts.dbURL, "db-url", strings.TrimSpace(os.Getenv("DB_URL")), "postgres connection url (defaults to $DB_URL)")
	fs.StringVar(&opts.role, "role", string(user.RolePlayer), "admin or player")
	fs.StringVar(&opts.teamID, "team-id", "", "team the code belongs to (players only)")
	fs.StringVar(&opts.label, "label", "", "human readable label")
	fs.StringVar(&opts.code, "code", "", "plaintext code; generated when empty")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "print the code and hash without writing")
	_ = fs.Parse(os.Args[1:])

	if err := run(context.Background(), opts, logger); err != nil {
		logger.Error("seed access code failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *logging.Logger) error {
	item, plaintext, err := buildAccessCode(opts, idgen.NewUUIDGenerator(), time.Now().UTC())
	if err != nil {
		return err
	}

	if opts.dryRun {
		fmt.Printf("code: %s\nhash: %s\n", plaintext, item.CodeHash)
		return nil
	}
	if opts.dbURL == "" {
		return fmt.Errorf("db url is required (--db-url or DB_URL)")
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", opts.dbURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if err := postgres.NewAccessCodeRepository(db).Create(ctx, item); err != nil {
		return err
	}

	logger.Info("access code created", "id", item.ID, "role", item.Role, "team_id", item.TeamID)
	fmt.Printf("code: %s\n", plaintext)
	return nil
}

func buildAccessCode(opts options, ids idgen.Generator, now time.Time) (accesscode.AccessCode, string, error) {
	role, err := user.ParseRole(strings.ToLower(strings.TrimSpace(opts.role)))
	if err != nil {
		return accesscode.AccessCode{}, "", fmt.Errorf("role %q: %w", opts.role, err)
	}
	teamID := strings.TrimSpace(opts.teamID)
	if role == user.RoleAdmin && teamID != "" {
		return accesscode.AccessCode{}, "", fmt.Errorf("admin codes cannot be bound to a team")
	}

	plaintext := strings.TrimSpace(opts.code)
	if plaintext == "" {
		if plaintext, err = generateCode(generatedCodeLength); err != nil {
			return accesscode.AccessCode{}, "", err
		}
	}

	hash, err := codehash.Hash(plaintext)
	if err != nil {
		return accesscode.AccessCode{}, "", fmt.Errorf("hash code: %w", err)
	}
	codeID, err := ids.NewID()
	if err != nil {
		return accesscode.AccessCode{}, "", err
	}

	label := strings.TrimSpace(opts.label)
	if label == "" {
		label = string(role)
		if teamID != "" {
			label += " " + teamID
		}
	}

	item := accesscode.AccessCode{
		ID:        codeID,
		Label:     label,
		CodeHash:  hash,
		Role:      role,
		TeamID:    teamID,
		Active:    true,
		CreatedAt: now,
	}
	if err := item.Validate(); err != nil {
		return accesscode.AccessCode{}, "", err
	}
	return item, plaintext, nil
}

func generateCode(length int) (string, error) {
	alphabetSize := big.NewInt(int64(len(codeAlphabet)))
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}
