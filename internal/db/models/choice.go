package models

// Choice is one selectable option of a ballot. APIChoiceID is the wire id of
// the option; SortOrder is the display position declared by the creator.
// TotalVotes is only meaningful for summary-mode ballots, where the sender
// discloses aggregate counts instead of per-participant votes.
type Choice struct {
	ID          int    `json:"id" pg:",pk"`
	BallotID    int    `json:"ballot_id" pg:",notnull,unique:ballot_api_choice"`
	APIChoiceID int    `json:"api_choice_id" pg:",notnull,unique:ballot_api_choice,use_zero"`
	Name        string `json:"name" pg:",notnull"`
	SortOrder   int    `json:"sort_order" pg:",use_zero"`
	TotalVotes  int    `json:"total_votes" pg:",use_zero"`
}
