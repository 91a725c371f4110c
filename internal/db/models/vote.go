package models

import "time"

// Vote is one participant's value for one choice. At most one row exists per
// (ballot, choice, voter); a resent vote replaces the prior row. Zero means
// explicitly not selected, any positive value means selected. Values other
// than 0/1 are stored unchanged for round-tripping.
type Vote struct {
	ID             int       `json:"id" pg:",pk"`
	BallotID       int       `json:"ballot_id" pg:",notnull,unique:ballot_choice_voter"`
	ChoiceID       int       `json:"choice_id" pg:",notnull,unique:ballot_choice_voter"`
	VotingIdentity string    `json:"voting_identity" pg:",notnull,unique:ballot_choice_voter"`
	Value          int       `json:"value" pg:",use_zero"`
	CreatedAt      time.Time `json:"created_at" pg:"default:now()"`
	ModifiedAt     time.Time `json:"modified_at"`
}

func (v *Vote) Selected() bool {
	return v.Value > 0
}
