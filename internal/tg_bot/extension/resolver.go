package extension

import (
	"ballot_system/internal/ballot"
	"ballot_system/internal/db/repositories"
)

// participantResolver resolves conversation membership from the user table.
// Every registered user counts as a member of every group chat, which is
// good enough for a single-community deployment.
type participantResolver struct {
	userRepository repositories.UserRepository
}

func NewParticipantResolver(userRepository repositories.UserRepository) ballot.ParticipantResolver {
	return &participantResolver{userRepository: userRepository}
}

func (r *participantResolver) ContactParticipants(identity string) ([]string, error) {
	return []string{identity}, nil
}

func (r *participantResolver) GroupParticipants(groupID int) ([]string, error) {
	users, err := r.userRepository.GetMany()
	if err != nil {
		return nil, err
	}

	identities := make([]string, 0, len(users))
	for _, user := range users {
		identities = append(identities, user.Identity)
	}

	return identities, nil
}
