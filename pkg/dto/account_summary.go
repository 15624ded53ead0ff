package dto

import (
	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/pkg/media"
)

// AccountSummary is how other resources embed an account.
type AccountSummary struct {
	ID       uint            `json:"id"`
	FullName string          `json:"full_name"`
	Photo    *media.Resolved `json:"photo"`
}

func NewAccountSummary(a *entity.Account, r media.Resolver) *AccountSummary {
	if a == nil {
		return nil
	}
	return &AccountSummary{ID: a.ID, FullName: a.FullName(), Photo: r.Resolve(a.Photo)}
}

// ReferenceResponse is the public form of a lookup row.
type ReferenceResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewReferenceResponse(r *entity.Reference) *ReferenceResponse {
	if r == nil {
		return nil
	}
	return &ReferenceResponse{ID: r.ID, Name: r.Name}
}
