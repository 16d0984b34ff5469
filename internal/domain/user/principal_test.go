package user

import "testing"

func TestPrincipal_CanUploadFor(t *testing.T) {
	t.Parallel()

	admin := Principal{UserID: "u1", Role: RoleAdmin}
	player := Principal{UserID: "u2", Role: RolePlayer, TeamID: "team-a"}
	unassigned := Principal{UserID: "u3", Role: RolePlayer}

	if !admin.CanUploadFor("team-z") {
		t.Fatalf("admin should upload for any team")
	}
	if !player.CanUploadFor("team-a") || player.CanUploadFor("team-b") {
		t.Fatalf("player should upload only for own team")
	}
	if unassigned.CanUploadFor("") {
		t.Fatalf("player without team must not upload")
	}
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	if r, err := ParseRole("player"); err != nil || r != RolePlayer {
		t.Fatalf("unexpected parse result %q %v", r, err)
	}
	if _, err := ParseRole("owner"); err == nil {
		t.Fatalf("expected unknown role error")
	}
}
