package service

import (
	"fmt"

	"qualitivate/internal/domains"
)

// authorizeSurveyRead gates read access to an existing survey. Global
// surveys (no owning company) are readable by anyone authenticated; scoped
// surveys require the actor's company to match. The survey exists at this
// point, so a scope miss is Forbidden, never NotFound.
func authorizeSurveyRead(actor domains.Actor, survey domains.Survey) error {
	if survey.CompanyID == nil {
		return nil
	}
	if actor.CoversCompany(*survey.CompanyID) {
		return nil
	}
	return fmt.Errorf("survey %s out of scope: %w", survey.ID, ErrForbidden)
}

// authorizeSurveyManage gates mutations: any admin role within the
// survey's company scope, or super_admin.
func authorizeSurveyManage(actor domains.Actor, survey domains.Survey) error {
	if actor.Role.Level() < domains.RoleDepartmentAdmin.Level() {
		return fmt.Errorf("role %s cannot manage surveys: %w", actor.Role, ErrForbidden)
	}
	return authorizeSurveyRead(actor, survey)
}
