package ballot

import (
	"fmt"
	"time"

	"ballot_system/internal/db/models"
)

// Wire enums. The transport serializes these as small integers; local enums
// are mapped 1:1 in both directions. Temporary never appears on the wire: a
// draft only exists on the device that authored it.

type (
	WireState       int
	WireAssessment  int
	WireType        int
	WireChoiceType  int
	WireDisplayType int
)

const (
	WireStateOpen   WireState = 0
	WireStateClosed WireState = 1

	WireAssessmentSingleChoice   WireAssessment = 0
	WireAssessmentMultipleChoice WireAssessment = 1

	WireTypeResultOnClose WireType = 0
	WireTypeIntermediate  WireType = 1

	WireChoiceTypeText WireChoiceType = 0

	WireDisplayTypeListMode    WireDisplayType = 0
	WireDisplayTypeSummaryMode WireDisplayType = 1
)

// SetupChoice is one option as carried by a setup message. Results is a
// per-participant value array aligned with the message's Participants list;
// TotalVotes is the aggregate count disclosed in summary mode.
type SetupChoice struct {
	APIChoiceID int    `json:"i"`
	Name        string `json:"n"`
	SortOrder   int    `json:"o"`
	Results     []int  `json:"r,omitempty"`
	TotalVotes  int    `json:"t,omitempty"`
}

// SetupMessage is the decoded payload announcing or closing a ballot.
type SetupMessage struct {
	APIBallotID     string          `json:"b"`
	CreatorIdentity string          `json:"c"`
	Description     string          `json:"d"`
	State           WireState       `json:"s"`
	Assessment      WireAssessment  `json:"a"`
	Type            WireType        `json:"y"`
	ChoiceType      WireChoiceType  `json:"h"`
	DisplayType     WireDisplayType `json:"m"`
	Choices         []SetupChoice   `json:"e"`
	Participants    []string        `json:"p,omitempty"`
	CreatedAt       time.Time       `json:"f"`
}

// VoteChoice is one per-choice value of a vote message. The message always
// carries the voter's complete state across all choices, not a delta.
type VoteChoice struct {
	APIChoiceID int `json:"i"`
	Value       int `json:"v"`
}

// VoteMessage is the decoded payload of a single participant's vote.
type VoteMessage struct {
	APIBallotID     string       `json:"b"`
	CreatorIdentity string       `json:"c"`
	VotingIdentity  string       `json:"u"`
	Votes           []VoteChoice `json:"e"`
}

func stateFromWire(s WireState) (models.BallotState, error) {
	switch s {
	case WireStateOpen:
		return models.BallotStateOpen, nil
	case WireStateClosed:
		return models.BallotStateClosed, nil
	}
	return "", fmt.Errorf("%w: unknown state %d", ErrBadProtocolMessage, s)
}

// stateToWire maps every stored state onto the two wire states; a temporary
// ballot only ever leaves the node as part of a publish, so it goes out open.
func stateToWire(s models.BallotState) WireState {
	if s == models.BallotStateClosed {
		return WireStateClosed
	}
	return WireStateOpen
}

func assessmentFromWire(a WireAssessment) (models.BallotAssessment, error) {
	switch a {
	case WireAssessmentSingleChoice:
		return models.BallotAssessmentSingleChoice, nil
	case WireAssessmentMultipleChoice:
		return models.BallotAssessmentMultipleChoice, nil
	}
	return "", fmt.Errorf("%w: unknown assessment %d", ErrBadProtocolMessage, a)
}

func assessmentToWire(a models.BallotAssessment) WireAssessment {
	if a == models.BallotAssessmentMultipleChoice {
		return WireAssessmentMultipleChoice
	}
	return WireAssessmentSingleChoice
}

func typeFromWire(t WireType) (models.BallotType, error) {
	switch t {
	case WireTypeResultOnClose:
		return models.BallotTypeResultOnClose, nil
	case WireTypeIntermediate:
		return models.BallotTypeIntermediate, nil
	}
	return "", fmt.Errorf("%w: unknown type %d", ErrBadProtocolMessage, t)
}

func typeToWire(t models.BallotType) WireType {
	if t == models.BallotTypeIntermediate {
		return WireTypeIntermediate
	}
	return WireTypeResultOnClose
}

func choiceTypeFromWire(c WireChoiceType) (models.BallotChoiceType, error) {
	if c == WireChoiceTypeText {
		return models.BallotChoiceTypeText, nil
	}
	return "", fmt.Errorf("%w: unknown choice type %d", ErrBadProtocolMessage, c)
}

func choiceTypeToWire(models.BallotChoiceType) WireChoiceType {
	return WireChoiceTypeText
}

func displayTypeFromWire(d WireDisplayType) (models.BallotDisplayType, error) {
	switch d {
	case WireDisplayTypeListMode:
		return models.BallotDisplayTypeListMode, nil
	case WireDisplayTypeSummaryMode:
		return models.BallotDisplayTypeSummaryMode, nil
	}
	return "", fmt.Errorf("%w: unknown display type %d", ErrBadProtocolMessage, d)
}

func displayTypeToWire(d models.BallotDisplayType) WireDisplayType {
	if d == models.BallotDisplayTypeSummaryMode {
		return WireDisplayTypeSummaryMode
	}
	return WireDisplayTypeListMode
}
