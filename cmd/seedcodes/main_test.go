package main

import (
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/tournament-scoring/internal/domain/user"
	"github.com/riskibarqy/tournament-scoring/internal/infrastructure/account/codehash"
	idgen "github.com/riskibarqy/tournament-scoring/internal/platform/id"
)

func TestBuildAccessCode_GeneratesPlayerCode(t *testing.T) {
	t.Parallel()

	item, plaintext, err := buildAccessCode(options{role: "player", teamID: "team-1"}, idgen.NewUUIDGenerator(), time.Now())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(plaintext) != generatedCodeLength {
		t.Fatalf("unexpected code length: %d", len(plaintext))
	}
	if item.Role != user.RolePlayer || item.TeamID != "team-1" || !item.Active {
		t.Fatalf("unexpected item: %+v", item)
	}
	if !codehash.Matches(item.CodeHash, plaintext) {
		t.Fatalf("hash does not match generated code")
	}
	if item.Label != "player team-1" {
		t.Fatalf("unexpected default label: %q", item.Label)
	}
}

func TestBuildAccessCode_Validation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		opts options
	}{
		{name: "unknown role", opts: options{role: "viewer"}},
		{name: "player without team", opts: options{role: "player"}},
		{name: "admin with team", opts: options{role: "admin", teamID: "team-1"}},
		{name: "short code", opts: options{role: "admin", code: "abc"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if _, _, err := buildAccessCode(tc.opts, idgen.NewUUIDGenerator(), time.Now()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestGenerateCode_UsesAlphabet(t *testing.T) {
	t.Parallel()

	code, err := generateCode(32)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Fatalf("unexpected rune %q in %q", r, code)
		}
	}
}
