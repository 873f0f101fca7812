package service

import (
	"context"
	"fmt"

	"qualitivate/internal/domains"
)

type DashboardService struct {
	surveys    SurveyProvider
	dashboards DashboardProvider
}

type DashboardProvider interface {
	GetPlatformCounts(ctx context.Context) (companies, surveys, total, completed int, err error)
	GetCompanyCounts(ctx context.Context, companyID int64) (surveys, total, completed int, err error)
	GetSiteBreakdown(ctx context.Context, companyID int64) ([]domains.SiteBreakdown, error)
	GetSiteCounts(ctx context.Context, siteID int64) (total, completed int, err error)
	GetDepartmentCounts(ctx context.Context, departmentID int64) (total, completed int, err error)
	ListPersonalEntries(ctx context.Context, userID int64) ([]domains.PersonalEntry, error)
}

func NewDashboardService(surveys SurveyProvider, dashboards DashboardProvider) *DashboardService {
	return &DashboardService{surveys: surveys, dashboards: dashboards}
}

// Get builds the dashboard for the actor's role. Each role sees its own
// slice of the hierarchy; a user below admin level gets a personal history
// instead of aggregates.
func (s *DashboardService) Get(ctx context.Context, actor domains.Actor) (domains.Dashboard, error) {
	switch actor.Role {
	case domains.RoleSuperAdmin:
		return s.platformDashboard(ctx)
	case domains.RoleCompanyAdmin:
		return s.companyDashboard(ctx, actor)
	case domains.RoleSiteAdmin:
		return s.siteDashboard(ctx, actor)
	case domains.RoleDepartmentAdmin:
		return s.departmentDashboard(ctx, actor)
	default:
		return s.personalDashboard(ctx, actor)
	}
}

func (s *DashboardService) platformDashboard(ctx context.Context) (domains.Dashboard, error) {
	companies, surveys, total, completed, err := s.dashboards.GetPlatformCounts(ctx)
	if err != nil {
		return domains.Dashboard{}, err
	}
	return domains.Dashboard{
		Role:           domains.RoleSuperAdmin,
		Companies:      companies,
		Surveys:        surveys,
		TotalResponses: total,
		Completed:      completed,
		CompletionRate: domains.CompletionRate(completed, total),
	}, nil
}

func (s *DashboardService) companyDashboard(ctx context.Context, actor domains.Actor) (domains.Dashboard, error) {
	if actor.CompanyID == nil {
		return domains.Dashboard{}, fmt.Errorf("company admin %d has no company", actor.UserID)
	}
	surveys, total, completed, err := s.dashboards.GetCompanyCounts(ctx, *actor.CompanyID)
	if err != nil {
		return domains.Dashboard{}, err
	}
	sites, err := s.dashboards.GetSiteBreakdown(ctx, *actor.CompanyID)
	if err != nil {
		return domains.Dashboard{}, err
	}
	return domains.Dashboard{
		Role:           domains.RoleCompanyAdmin,
		Surveys:        surveys,
		TotalResponses: total,
		Completed:      completed,
		CompletionRate: domains.CompletionRate(completed, total),
		Sites:          sites,
	}, nil
}

func (s *DashboardService) siteDashboard(ctx context.Context, actor domains.Actor) (domains.Dashboard, error) {
	if actor.SiteID == nil {
		return domains.Dashboard{}, fmt.Errorf("site admin %d has no site", actor.UserID)
	}
	total, completed, err := s.dashboards.GetSiteCounts(ctx, *actor.SiteID)
	if err != nil {
		return domains.Dashboard{}, err
	}
	surveys, err := s.visibleSurveyCount(ctx, actor)
	if err != nil {
		return domains.Dashboard{}, err
	}
	return domains.Dashboard{
		Role:           domains.RoleSiteAdmin,
		Surveys:        surveys,
		TotalResponses: total,
		Completed:      completed,
		CompletionRate: domains.CompletionRate(completed, total),
	}, nil
}

func (s *DashboardService) departmentDashboard(ctx context.Context, actor domains.Actor) (domains.Dashboard, error) {
	if actor.DepartmentID == nil {
		return domains.Dashboard{}, fmt.Errorf("department admin %d has no department", actor.UserID)
	}
	total, completed, err := s.dashboards.GetDepartmentCounts(ctx, *actor.DepartmentID)
	if err != nil {
		return domains.Dashboard{}, err
	}
	surveys, err := s.visibleSurveyCount(ctx, actor)
	if err != nil {
		return domains.Dashboard{}, err
	}
	return domains.Dashboard{
		Role:           domains.RoleDepartmentAdmin,
		Surveys:        surveys,
		TotalResponses: total,
		Completed:      completed,
		CompletionRate: domains.CompletionRate(completed, total),
	}, nil
}

func (s *DashboardService) personalDashboard(ctx context.Context, actor domains.Actor) (domains.Dashboard, error) {
	entries, err := s.dashboards.ListPersonalEntries(ctx, actor.UserID)
	if err != nil {
		return domains.Dashboard{}, err
	}
	completed := 0
	for _, e := range entries {
		if e.Status == domains.ResponseStatusCompleted {
			completed++
		}
	}
	return domains.Dashboard{
		Role:           domains.RoleUser,
		TotalResponses: len(entries),
		Completed:      completed,
		CompletionRate: domains.CompletionRate(completed, len(entries)),
		Personal:       entries,
	}, nil
}

func (s *DashboardService) visibleSurveyCount(ctx context.Context, actor domains.Actor) (int, error) {
	surveys, err := s.surveys.ListSurveys(ctx, actor.CompanyID)
	if err != nil {
		return 0, err
	}
	return len(surveys), nil
}
