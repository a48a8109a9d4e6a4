package church

import (
	"errors"
	"strings"
)

// CreateChurchDTO is the request payload for creating a church.
type CreateChurchDTO struct {
	Code         string  `json:"code" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	AltName      *string `json:"alt_name,omitempty"`
	Address      *string `json:"address,omitempty"`
	ContactNo    *string `json:"contact_no,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
}

func (dto CreateChurchDTO) Validate() error {
	if strings.TrimSpace(dto.Code) == "" {
		return errors.New("code is required")
	}
	if len(dto.Code) > 20 {
		return errors.New("code must be at most 20 characters")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > 255 {
		return errors.New("name must be at most 255 characters")
	}
	return nil
}

// UpdateChurchDTO carries optional fields; nil fields keep their current value.
type UpdateChurchDTO struct {
	Name         *string `json:"name,omitempty"`
	AltName      *string `json:"alt_name,omitempty"`
	Address      *string `json:"address,omitempty"`
	ContactNo    *string `json:"contact_no,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
}

func (dto UpdateChurchDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if dto.Name != nil && len(*dto.Name) > 255 {
		return errors.New("name must be at most 255 characters")
	}
	return nil
}
