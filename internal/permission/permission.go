// Package permission decides whether an account may use a capability.
package permission

import (
	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/pkg/apperror"
)

type Capability string

const (
	Administer         Capability = "ADMINISTER"
	ManageProjects     Capability = "MANAGE_PROJECTS"
	ManagePublications Capability = "MANAGE_PUBLICATIONS"
	ManageAccounts     Capability = "MANAGE_ACCOUNTS"
)

func hasFlag(account *entity.Account, capability Capability) bool {
	switch capability {
	case Administer:
		return account.CanAdminister
	case ManageProjects:
		return account.CanManageProjects
	case ManagePublications:
		return account.CanManagePublications
	case ManageAccounts:
		return account.CanManageAccounts
	}
	return false
}

// Allowed reports whether account may use capability. targetAccountID only
// matters for ManageAccounts, where acting on oneself is always allowed.
func Allowed(account *entity.Account, capability Capability, targetAccountID ...uint) bool {
	if account == nil {
		return false
	}
	if account.CanAdminister || hasFlag(account, capability) {
		return true
	}
	if capability == ManageAccounts {
		for _, id := range targetAccountID {
			if id == account.ID {
				return true
			}
		}
	}
	return false
}

// Check is Allowed as an error: 401 without an account, 403 when denied.
func Check(account *entity.Account, capability Capability, targetAccountID ...uint) error {
	if account == nil {
		return apperror.Unauthorized("Não autorizado.")
	}
	if !Allowed(account, capability, targetAccountID...) {
		return apperror.Forbidden("Usuário sem permissão.").
			WithData(map[string]string{"capability": string(capability)})
	}
	return nil
}
