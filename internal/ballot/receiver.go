package ballot

import (
	"fmt"

	"ballot_system/internal/db/models"
)

// TriggerSource tells the transport why a message is being sent, so it can
// pick the right delivery path (e.g. not reflecting a sync-triggered send
// back to the device that caused it).
type TriggerSource string

const (
	TriggerLocal  TriggerSource = "local"
	TriggerRemote TriggerSource = "remote"
	TriggerSync   TriggerSource = "sync"
)

// MessageReceiver is the transport boundary. Implementations own recipient
// fan-out, retries and persistence of the outgoing message record. A payload
// exceeding the transport limit is reported as ErrMessageTooLarge; all other
// failures are opaque.
type MessageReceiver interface {
	CreateAndSendBallotSetupMessage(data *SetupMessage, ref ReceiverRef, messageID string, receivers []string, trigger TriggerSource) error
	CreateAndSendBallotVoteMessage(data *VoteMessage, ref ReceiverRef, trigger TriggerSource) error
}

// ParticipantResolver resolves the eligible participants of a conversation.
// Contact and group membership live outside this subsystem.
type ParticipantResolver interface {
	ContactParticipants(identity string) ([]string, error)
	GroupParticipants(groupID int) ([]string, error)
}

// ReceiverRef is the closed set of conversation kinds a ballot can be linked
// to. Operations select behavior by switching on Kind; there is no open-ended
// subtype dispatch.
type ReceiverRef struct {
	Kind            models.LinkKind
	ContactIdentity string
	GroupID         int
}

func ContactReceiver(identity string) ReceiverRef {
	return ReceiverRef{Kind: models.LinkKindContact, ContactIdentity: identity}
}

func GroupReceiver(groupID int) ReceiverRef {
	return ReceiverRef{Kind: models.LinkKindGroup, GroupID: groupID}
}

func receiverFromLink(link *models.Link) ReceiverRef {
	if link.Kind() == models.LinkKindContact {
		return ContactReceiver(link.ContactIdentity)
	}
	return GroupReceiver(link.GroupID)
}

func (r ReceiverRef) link(ballotID int) *models.Link {
	link := &models.Link{BallotID: ballotID}
	switch r.Kind {
	case models.LinkKindContact:
		link.ContactIdentity = r.ContactIdentity
	case models.LinkKindGroup:
		link.GroupID = r.GroupID
	}
	return link
}

func (r ReceiverRef) matchesLink(link *models.Link) bool {
	switch r.Kind {
	case models.LinkKindContact:
		return link.ContactIdentity == r.ContactIdentity
	case models.LinkKindGroup:
		return link.GroupID == r.GroupID
	}
	return false
}

// ResolveParticipants returns the identities eligible to vote in this
// conversation.
func (r ReceiverRef) ResolveParticipants(resolver ParticipantResolver) ([]string, error) {
	switch r.Kind {
	case models.LinkKindContact:
		return resolver.ContactParticipants(r.ContactIdentity)
	case models.LinkKindGroup:
		return resolver.GroupParticipants(r.GroupID)
	}
	return nil, fmt.Errorf("unknown receiver kind %q", r.Kind)
}
