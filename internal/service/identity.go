package service

import (
	"context"

	"github.com/khushalb002/MMSpace-sub000/internal/apperr"
	"github.com/khushalb002/MMSpace-sub000/internal/domain"
)

// ProfileRef is the role-specific profile record anchoring authorization
// decisions for a user.
type ProfileRef struct {
	ID     string
	UserID string
	Role   domain.Role
	Name   string
}

type IdentityResolver struct {
	profiles ProfileStore
}

func NewIdentityResolver(profiles ProfileStore) *IdentityResolver {
	return &IdentityResolver{profiles: profiles}
}

// ResolveProfile finds the profile owned by the user account for the given
// role. A missing profile is reported as not found, never defaulted: callers
// must treat it as "no profile, cannot authorize".
func (r *IdentityResolver) ResolveProfile(ctx context.Context, userID string, role domain.Role) (*ProfileRef, error) {
	switch role {
	case domain.RoleMentor:
		m, err := r.profiles.MentorByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ProfileRef{ID: m.ID, UserID: m.UserID, Role: role, Name: m.Name}, nil
	case domain.RoleMentee:
		m, err := r.profiles.MenteeByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ProfileRef{ID: m.ID, UserID: m.UserID, Role: role, Name: m.Name}, nil
	case domain.RoleGuardian:
		g, err := r.profiles.GuardianByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ProfileRef{ID: g.ID, UserID: g.UserID, Role: role, Name: g.Name}, nil
	}
	return nil, apperr.NotFound("profile")
}
