package model

import "time"

// Team is a GitHub team the current user belongs to.
type Team struct {
	ID           int64
	Name         string
	Slug         string
	Organization string // Owning organization login.
}

// TeamSnapshot is the set of teams computed for a user at a point in time.
type TeamSnapshot struct {
	Username   string
	Teams      []Team
	CapturedAt time.Time
}

// IsValidFor reports whether the snapshot belongs to username and is no older
// than ttl at now. The boundary is inclusive: an age of exactly ttl is valid.
func (s TeamSnapshot) IsValidFor(username string, now time.Time, ttl time.Duration) bool {
	if s.Username != username {
		return false
	}
	return now.Sub(s.CapturedAt) <= ttl
}

// MatchesRequestedTeam reports whether any of teams matches a requested review
// team. A user team matches when its name or its slug equals the requested
// team's name. Comparison is case-sensitive.
func MatchesRequestedTeam(teams []Team, requested []TeamRef) bool {
	for _, rt := range requested {
		for _, t := range teams {
			if t.Name == rt.Name || t.Slug == rt.Name {
				return true
			}
		}
	}
	return false
}
