package domain

import (
	"time"

	"github.com/google/uuid"
)

// ShareLink grants anonymous read access to one site, either in full
// (Date == nil) or restricted to entries created on one UTC calendar
// date. The two scopes are disjoint: a whole-site token never satisfies
// a day-scoped request and vice versa.
//
// A link is created on first demand for its scope, and the only state
// change it ever sees is revocation, which is terminal. A new request
// for the same scope after revocation mints a fresh link with a fresh
// token; revoked tokens are never reused.
type ShareLink struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SiteID    int64     `json:"site_id" db:"site_id"`
	Date      *Date     `json:"date,omitempty" db:"date"`
	Token     string    `json:"token" db:"token"`
	Revoked   bool      `json:"revoked" db:"revoked"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
