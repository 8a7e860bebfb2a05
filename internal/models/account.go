package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleMaster  Role = "master"
)

// MasterUsername is the distinguished super-user. It never signs in through
// the admin login and is hidden from account listings.
const MasterUsername = "master"

type Account struct {
	Username       string     `db:"username" json:"username"`
	PasswordHash   string     `db:"password_hash" json:"-"` // Never expose in JSON
	Role           Role       `db:"role" json:"role"`
	FailedAttempts int        `db:"failed_attempts" json:"failed_attempts"`
	LockoutTime    *time.Time `db:"lockout_time" json:"lockout_time"`
}

// IsMaster reports whether the account is the master identity.
func (a Account) IsMaster() bool {
	return IsMasterName(a.Username) || a.Role == RoleMaster
}

// LockedAt reports whether the lockout expiry is still in the future at now.
func (a Account) LockedAt(now time.Time) bool {
	return a.LockoutTime != nil && now.Before(*a.LockoutTime)
}

func IsMasterName(username string) bool {
	return strings.EqualFold(strings.TrimSpace(username), MasterUsername)
}

// ParseRole accepts the full role name or its initial. The master role is
// never assignable.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "admin":
		return RoleAdmin, true
	case "s", "staff":
		return RoleStaff, true
	case "m", "manager":
		return RoleManager, true
	default:
		return "", false
	}
}

// AccountRequest is used for account creation.
type AccountRequest struct {
	Username string
	Password string
	Role     Role
}

// AccountUpdateRequest carries an edit; empty fields keep the current value.
type AccountUpdateRequest struct {
	Username string
	Password string
}
