package models

import (
	"time"

	id "dexrank/pkg/domain"
)

// User owns rankings and boxes by reference. The two ID slices are the
// denormalized back-references maintained in lockstep with the entity tables:
// every ID listed must point at an entity whose owner is this user, and every
// owned entity must be listed. HighestRankedCount is derived (the longest
// Pokémon list across the user's rankings) and is mutated only by the stats
// tracker.
type User struct {
	ID                 id.UserID
	Email              string
	DisplayName        string
	PasswordHash       string
	RankingIDs         []id.RankingID
	BoxIDs             []id.BoxID
	HighestRankedCount int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Clone returns a deep copy so stores can hand out values without aliasing
// their internal state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.RankingIDs = append([]id.RankingID(nil), u.RankingIDs...)
	out.BoxIDs = append([]id.BoxID(nil), u.BoxIDs...)
	return &out
}
