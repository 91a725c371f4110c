package models

type LinkKind string

const (
	LinkKindContact LinkKind = "contact"
	LinkKindGroup   LinkKind = "group"
)

func (k LinkKind) String() string {
	return string(k)
}

// Link binds a ballot to the conversation that owns it: either a contact
// identity or a group, never both. It is set once and immutable afterwards.
type Link struct {
	ID              int    `json:"id" pg:",pk"`
	BallotID        int    `json:"ballot_id" pg:",notnull,unique"`
	ContactIdentity string `json:"contact_identity"`
	GroupID         int    `json:"group_id" pg:",use_zero"`
}

func (l *Link) Kind() LinkKind {
	if l.ContactIdentity != "" {
		return LinkKindContact
	}
	return LinkKindGroup
}
