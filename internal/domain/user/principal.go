package user

import "errors"

type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

var ErrUnknownRole = errors.New("unknown role")

func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RolePlayer:
		return Role(raw), nil
	default:
		return "", ErrUnknownRole
	}
}

// Principal is the authenticated caller attached to a request.
type Principal struct {
	UserID    string
	SessionID string
	Role      Role
	// TeamID is set for players only.
	TeamID string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanUploadFor reports whether the caller may submit screenshots for teamID.
func (p Principal) CanUploadFor(teamID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.Role == RolePlayer && p.TeamID != "" && p.TeamID == teamID
}
