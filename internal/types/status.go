package types

// Status is the lifecycle status of a persisted record. Domain state (e.g.
// an invoice being PAID) lives on the entity itself; Status only says whether
// the record is live, archived, or soft deleted.
type Status string

const (
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusDeleted   Status = "deleted"
)

func (s Status) String() string {
	return string(s)
}
