package user

import (
	"fmt"

	"github.com/lifegate/church-mgmt/internal/access"
)

type Repository interface {
	GetByUsercode(usercode, headChurchCode string) (*User, error)
	GetGrants(usercode, headChurchCode string) ([]access.Grant, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// GetByUsercode returns the user with their grants attached.
func (s *Service) GetByUsercode(usercode, headChurchCode string) (*User, error) {
	u, err := s.repo.GetByUsercode(usercode, headChurchCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by usercode: %w", err)
	}

	grants, err := s.repo.GetGrants(usercode, headChurchCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get user grants: %w", err)
	}
	u.Grants = grants

	return u, nil
}
