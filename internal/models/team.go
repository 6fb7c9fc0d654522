package models

import "time"

// DefaultTeamMaxMembers bounds team size unless overridden at creation.
const DefaultTeamMaxMembers = 10

// Team is a small group of players sharing progress visibility.
// Password is the invite code handed out by the owner.
type Team struct {
	ID         string    `db:"id" json:"id"`
	OwnerID    string    `db:"owner_id" json:"owner"`
	Password   string    `db:"password" json:"password"`
	MaxMembers int       `db:"max_members" json:"maximumMembers"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// TeamMember is one user's membership row. HideTeammates is the viewer's
// own preference list of teammate ids excluded from their team view.
type TeamMember struct {
	TeamID        string    `db:"team_id" json:"-"`
	UserID        string    `db:"user_id" json:"userId"`
	JoinedAt      time.Time `db:"joined_at" json:"joinedAt"`
	HideTeammates []string  `db:"hide_teammates" json:"-"`
}
