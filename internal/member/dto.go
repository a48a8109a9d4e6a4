package member

import (
	"errors"
	"strings"
	"time"
)

// CreateMemberDTO is the request payload for registering a member at a branch.
type CreateMemberDTO struct {
	FirstName     string     `json:"first_name" validate:"required"`
	MiddleName    *string    `json:"middle_name,omitempty"`
	LastName      string     `json:"last_name" validate:"required"`
	FamilyName    string     `json:"family_name"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        string     `json:"gender"`
	MaritalStatus string     `json:"marital_status"`
	Occupation    *string    `json:"occupation,omitempty"`
	HomeAddress   *string    `json:"home_address,omitempty"`
	ContactNo     string     `json:"contact_no" validate:"required"`
	ContactEmail  string     `json:"contact_email" validate:"required"`
	BranchCode    string     `json:"branch_code" validate:"required"`
	JoinDate      *time.Time `json:"join_date,omitempty"`
}

func (dto CreateMemberDTO) Validate() error {
	if strings.TrimSpace(dto.FirstName) == "" {
		return errors.New("first_name is required")
	}
	if strings.TrimSpace(dto.LastName) == "" {
		return errors.New("last_name is required")
	}
	if len(dto.FirstName) > 255 || len(dto.LastName) > 255 {
		return errors.New("names must be at most 255 characters")
	}
	if strings.TrimSpace(dto.ContactNo) == "" {
		return errors.New("contact_no is required")
	}
	if strings.TrimSpace(dto.ContactEmail) == "" {
		return errors.New("contact_email is required")
	}
	if !strings.Contains(dto.ContactEmail, "@") {
		return errors.New("contact_email is not a valid email address")
	}
	if strings.TrimSpace(dto.BranchCode) == "" {
		return errors.New("branch_code is required")
	}
	if dto.Gender != "" && dto.Gender != "M" && dto.Gender != "F" {
		return errors.New("gender must be 'M' or 'F'")
	}
	return nil
}

// UpdateMemberDTO carries optional fields; nil fields keep their current value.
type UpdateMemberDTO struct {
	FirstName     *string    `json:"first_name,omitempty"`
	MiddleName    *string    `json:"middle_name,omitempty"`
	LastName      *string    `json:"last_name,omitempty"`
	FamilyName    *string    `json:"family_name,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	MaritalStatus *string    `json:"marital_status,omitempty"`
	Occupation    *string    `json:"occupation,omitempty"`
	HomeAddress   *string    `json:"home_address,omitempty"`
	ContactNo     *string    `json:"contact_no,omitempty"`
	ContactEmail  *string    `json:"contact_email,omitempty"`
}

func (dto UpdateMemberDTO) Validate() error {
	if dto.FirstName != nil && strings.TrimSpace(*dto.FirstName) == "" {
		return errors.New("first_name cannot be empty")
	}
	if dto.LastName != nil && strings.TrimSpace(*dto.LastName) == "" {
		return errors.New("last_name cannot be empty")
	}
	if dto.ContactEmail != nil && !strings.Contains(*dto.ContactEmail, "@") {
		return errors.New("contact_email is not a valid email address")
	}
	if dto.Gender != nil && *dto.Gender != "M" && *dto.Gender != "F" {
		return errors.New("gender must be 'M' or 'F'")
	}
	return nil
}
