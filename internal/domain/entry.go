package domain

import "time"

type EntryType string

const (
	EntryTypeGeneral    EntryType = "general"
	EntryTypeWellLog    EntryType = "well_log"
	EntryTypeAsBuilt    EntryType = "as_built"
	EntryTypePumpCurve  EntryType = "pump_curve"
	EntryTypePumpTest   EntryType = "pump_test"
	EntryTypeWellTest   EntryType = "well_test"
	EntryTypePanelCheck EntryType = "panel_check"
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryTypeGeneral, EntryTypeWellLog, EntryTypeAsBuilt,
		EntryTypePumpCurve, EntryTypePumpTest, EntryTypeWellTest,
		EntryTypePanelCheck:
		return true
	}
	return false
}

// Entry is a dated record against a site. Entries are immutable after
// creation; only the comments on attached files may change.
type Entry struct {
	ID        int64     `json:"id" db:"id"`
	SiteID    int64     `json:"site_id" db:"site_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Type      EntryType `json:"type" db:"type"`
	Note      string    `json:"note" db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Files []EntryFile `json:"files,omitempty" db:"-"`
}

// Date returns the UTC calendar date the entry was created on.
func (e *Entry) Date() Date { return DateOf(e.CreatedAt) }

// EntryFile references an uploaded attachment. Filename is the generated
// storage name and the only key used against the file store; OrigName is
// what the uploader called it.
type EntryFile struct {
	ID       int64  `json:"id" db:"id"`
	EntryID  int64  `json:"entry_id" db:"entry_id"`
	Filename string `json:"filename" db:"filename"`
	OrigName string `json:"orig_name" db:"orig_name"`
	MIME     string `json:"mime" db:"mime"`
	Comment  string `json:"comment" db:"comment"`
}
