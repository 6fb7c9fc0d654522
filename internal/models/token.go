package models

import "time"

// Permission codes an API token may carry.
const (
	PermissionGetProgress   = "GP" // read own progress
	PermissionTeamProgress  = "TP" // read teammates' progress
	PermissionWriteProgress = "WP" // mutate own progress
)

// APIToken is a long-lived opaque bearer credential for the progress API.
// The token value itself is the primary key; owners manage their tokens
// through the account endpoints.
type APIToken struct {
	Token       string     `db:"token" json:"token"`
	UserID      string     `db:"user_id" json:"-"`
	Note        string     `db:"note" json:"note"`
	Permissions []string   `db:"permissions" json:"permissions"`
	Calls       int64      `db:"calls" json:"calls"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	LastUsedAt  *time.Time `db:"last_used_at" json:"lastUsedAt,omitempty"`
}

// HasPermission reports whether the token carries the given permission code.
func (t *APIToken) HasPermission(perm string) bool {
	for _, p := range t.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
