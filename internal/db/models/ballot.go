package models

import (
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type (
	BallotState       string
	BallotAssessment  string
	BallotType        string
	BallotChoiceType  string
	BallotDisplayType string
)

const (
	// BallotStateTemporary is a local draft that has not been sent yet.
	BallotStateTemporary BallotState = "temporary"
	BallotStateOpen      BallotState = "open"
	BallotStateClosed    BallotState = "closed"

	BallotAssessmentSingleChoice   BallotAssessment = "single_choice"
	BallotAssessmentMultipleChoice BallotAssessment = "multiple_choice"

	BallotTypeIntermediate  BallotType = "intermediate"
	BallotTypeResultOnClose BallotType = "result_on_close"

	BallotChoiceTypeText BallotChoiceType = "text"

	BallotDisplayTypeListMode    BallotDisplayType = "list_mode"
	BallotDisplayTypeSummaryMode BallotDisplayType = "summary_mode"
)

func (s BallotState) String() string {
	return string(s)
}

func (s BallotState) CapitalizedString() string {
	return cases.Title(language.English).String(s.String())
}

func (a BallotAssessment) String() string {
	return string(a)
}

func (t BallotType) String() string {
	return string(t)
}

func (c BallotChoiceType) String() string {
	return string(c)
}

func (d BallotDisplayType) String() string {
	return string(d)
}

// Ballot is one poll. It is identified locally by ID and on the wire by the
// (APIBallotID, CreatorIdentity) pair; APIBallotID never changes once set.
type Ballot struct {
	ID              int               `json:"id" pg:",pk"`
	APIBallotID     string            `json:"api_ballot_id" pg:",notnull,unique:api_ballot_creator"`
	CreatorIdentity string            `json:"creator_identity" pg:",notnull,unique:api_ballot_creator"`
	Description     string            `json:"description" pg:",notnull"`
	State           BallotState       `json:"state" pg:"type:BallotState,notnull,default:'temporary'"`
	Assessment      BallotAssessment  `json:"assessment" pg:"type:BallotAssessment,notnull,default:'single_choice'"`
	Type            BallotType        `json:"type" pg:"type:BallotType,notnull,default:'intermediate'"`
	ChoiceType      BallotChoiceType  `json:"choice_type" pg:"type:BallotChoiceType,notnull,default:'text'"`
	DisplayType     BallotDisplayType `json:"display_type" pg:"type:BallotDisplayType,notnull,default:'list_mode'"`
	CreatedAt       time.Time         `json:"created_at" pg:"default:now()"`
	ModifiedAt      time.Time         `json:"modified_at"`
	LastViewedAt    time.Time         `json:"last_viewed_at"`
	Choices         []Choice          `json:"choices" pg:"rel:has-many"`
}

func (b *Ballot) IsOpen() bool {
	return b.State == BallotStateOpen
}

func (b *Ballot) IsClosed() bool {
	return b.State == BallotStateClosed
}

// IsCreator reports whether identity authored this ballot.
func (b *Ballot) IsCreator(identity string) bool {
	return identity != "" && identity == b.CreatorIdentity
}
