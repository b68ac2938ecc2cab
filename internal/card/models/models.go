// Package models defines the business card domain types.
package models

import (
	"strings"
	"time"

	dErrors "tapcard/pkg/domain-errors"
)

// Card is a published digital business card.
type Card struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	Company   string    `json:"company"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Website   string    `json:"website"`
	AvatarURL string    `json:"avatarUrl"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateRequest carries the editable fields of a card. The full document is
// replaced on update; omitted optional fields clear their values.
type UpdateRequest struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Company   string `json:"company"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Website   string `json:"website"`
	AvatarURL string `json:"avatarUrl"`
}

// Normalize trims surrounding whitespace from all fields.
func (r *UpdateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Title = strings.TrimSpace(r.Title)
	r.Company = strings.TrimSpace(r.Company)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Website = strings.TrimSpace(r.Website)
	r.AvatarURL = strings.TrimSpace(r.AvatarURL)
}

// Validate enforces the required contact fields.
func (r *UpdateRequest) Validate() error {
	if r.Name == "" || r.Email == "" {
		return dErrors.New(dErrors.CodeBadRequest, "Name and email are required")
	}
	return nil
}
