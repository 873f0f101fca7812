package service

import (
	"context"

	"qualitivate/internal/domains"
)

type OrgService struct {
	org   OrgProvider
	users UserLister
}

type OrgProvider interface {
	SaveCompany(ctx context.Context, name string) (domains.Company, error)
	GetCompany(ctx context.Context, id int64) (domains.Company, error)
	ListCompanies(ctx context.Context) ([]domains.Company, error)
	SaveSite(ctx context.Context, companyID int64, name string) (domains.Site, error)
	GetSite(ctx context.Context, id int64) (domains.Site, error)
	ListSitesByCompany(ctx context.Context, companyID int64) ([]domains.Site, error)
	SaveDepartment(ctx context.Context, siteID int64, name string) (domains.Department, error)
	ListDepartmentsBySite(ctx context.Context, siteID int64) ([]domains.Department, error)
}

type UserLister interface {
	ListUsersByCompany(ctx context.Context, companyID int64) ([]domains.User, error)
}

func NewOrgService(org OrgProvider, users UserLister) *OrgService {
	return &OrgService{org: org, users: users}
}

// CreateCompany is reserved for the platform operator.
func (s *OrgService) CreateCompany(ctx context.Context, actor domains.Actor, name string) (domains.Company, error) {
	if actor.Role != domains.RoleSuperAdmin {
		return domains.Company{}, ErrForbidden
	}
	if name == "" {
		return domains.Company{}, NewValidationError("company name is required")
	}
	return s.org.SaveCompany(ctx, name)
}

func (s *OrgService) ListCompanies(ctx context.Context, actor domains.Actor) ([]domains.Company, error) {
	if actor.Role != domains.RoleSuperAdmin {
		return nil, ErrForbidden
	}
	return s.org.ListCompanies(ctx)
}

func (s *OrgService) GetCompany(ctx context.Context, actor domains.Actor, companyID int64) (domains.Company, error) {
	company, err := s.org.GetCompany(ctx, companyID)
	if err != nil {
		return domains.Company{}, err
	}
	if !actor.CoversCompany(companyID) {
		return domains.Company{}, ErrForbidden
	}
	return company, nil
}

func (s *OrgService) CreateSite(ctx context.Context, actor domains.Actor, companyID int64, name string) (domains.Site, error) {
	if actor.Role.Level() < domains.RoleCompanyAdmin.Level() || !actor.CoversCompany(companyID) {
		return domains.Site{}, ErrForbidden
	}
	if name == "" {
		return domains.Site{}, NewValidationError("site name is required")
	}
	return s.org.SaveSite(ctx, companyID, name)
}

func (s *OrgService) ListSites(ctx context.Context, actor domains.Actor, companyID int64) ([]domains.Site, error) {
	if !actor.CoversCompany(companyID) {
		return nil, ErrForbidden
	}
	return s.org.ListSitesByCompany(ctx, companyID)
}

func (s *OrgService) CreateDepartment(ctx context.Context, actor domains.Actor, siteID int64, name string) (domains.Department, error) {
	site, err := s.org.GetSite(ctx, siteID)
	if err != nil {
		return domains.Department{}, err
	}
	if actor.Role.Level() < domains.RoleSiteAdmin.Level() || !actor.CoversSite(site.CompanyID, siteID) {
		return domains.Department{}, ErrForbidden
	}
	if name == "" {
		return domains.Department{}, NewValidationError("department name is required")
	}
	return s.org.SaveDepartment(ctx, siteID, name)
}

func (s *OrgService) ListDepartments(ctx context.Context, actor domains.Actor, siteID int64) ([]domains.Department, error) {
	site, err := s.org.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if !actor.CoversSite(site.CompanyID, siteID) {
		return nil, ErrForbidden
	}
	return s.org.ListDepartmentsBySite(ctx, siteID)
}

// ListUsers exposes a company's roster to its admins.
func (s *OrgService) ListUsers(ctx context.Context, actor domains.Actor, companyID int64) ([]domains.User, error) {
	if actor.Role.Level() < domains.RoleSiteAdmin.Level() || !actor.CoversCompany(companyID) {
		return nil, ErrForbidden
	}
	return s.users.ListUsersByCompany(ctx, companyID)
}
