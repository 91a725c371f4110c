package models

type TelegramState struct {
	LastCommand      string
	LastCommandState string
}

// BallotDraft accumulates the answers of the multi-step ballot creation
// dialog before the ballot row is created.
type BallotDraft struct {
	Description string
	Choices     []string
	Assessment  BallotAssessment
	Type        BallotType
	DisplayType BallotDisplayType
}

// User maps a chat user to a messaging identity. Identity is what appears as
// CreatorIdentity / VotingIdentity on ballots and votes.
type User struct {
	ID               int           `json:"id" pg:",pk"`
	Name             string        `json:"name"`
	Identity         string        `json:"identity" pg:",notnull,unique"`
	TelegramID       int64         `json:"telegram_id" pg:",notnull,unique"`
	TelegramNickname string        `json:"telegram_nickname" pg:",notnull,unique"`
	TempDraft        BallotDraft   `json:"temp_draft"`
	TelegramState    TelegramState `json:"telegram_state"`
}
