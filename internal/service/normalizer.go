package service

import (
	"context"

	"github.com/khushalb002/MMSpace-sub000/internal/apperr"
	"github.com/khushalb002/MMSpace-sub000/internal/domain"
)

// NameResolver batch-resolves display names for a set of sender user ids.
type NameResolver func(ctx context.Context, userIDs []string) (map[string]string, error)

// Normalizer decorates raw messages with a human-readable sender name. Sender
// identity is role-indirect for mentors and guardians (the name lives on the
// role profile); mentee and admin names come straight off the users record.
// Each role present in a batch costs exactly one lookup, regardless of how
// many messages carry it.
type Normalizer struct {
	resolvers map[domain.Role]NameResolver
}

func NewNormalizer(profiles ProfileStore) *Normalizer {
	return &Normalizer{resolvers: map[domain.Role]NameResolver{
		domain.RoleMentor:   profiles.MentorNamesByUserIDs,
		domain.RoleGuardian: profiles.GuardianNamesByUserIDs,
		domain.RoleMentee:   profiles.UserNamesByIDs,
		domain.RoleAdmin:    profiles.UserNamesByIDs,
	}}
}

func (n *Normalizer) Decorate(ctx context.Context, msgs []*domain.Message) error {
	byRole := map[domain.Role]map[string]struct{}{}
	for _, m := range msgs {
		ids, ok := byRole[m.SenderRole]
		if !ok {
			ids = map[string]struct{}{}
			byRole[m.SenderRole] = ids
		}
		ids[m.SenderID] = struct{}{}
	}

	names := map[domain.Role]map[string]string{}
	for role, idSet := range byRole {
		resolver, ok := n.resolvers[role]
		if !ok {
			continue
		}
		ids := make([]string, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		resolved, err := resolver(ctx, ids)
		if err != nil {
			return apperr.Dependency("resolve sender names", err)
		}
		names[role] = resolved
	}

	for _, m := range msgs {
		if resolved, ok := names[m.SenderRole]; ok {
			m.SenderName = resolved[m.SenderID]
		}
	}
	return nil
}
