package service

import "github.com/GTDGit/gtd_paygate/internal/utils"

// RoleAdmin is required to reverse payments and to watch payment events.
const RoleAdmin = "admin"

// Authorize allows the call when required is empty or present in roles.
func Authorize(roles []string, required string) error {
	if required == "" {
		return nil
	}
	for _, role := range roles {
		if role == required {
			return nil
		}
	}
	return utils.ErrForbidden
}
