package service

import (
	"context"
	"testing"

	"qualitivate/internal/domains"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dashboardFixture(dashboards *stubDashboardProvider) *DashboardService {
	surveys := newStubSurveyProvider(
		domains.Survey{ID: "s1", CompanyID: int64Ptr(10), Status: domains.SurveyStatusActive},
		domains.Survey{ID: "s2", CompanyID: int64Ptr(10), Status: domains.SurveyStatusDraft},
		domains.Survey{ID: "s3", CompanyID: int64Ptr(20), Status: domains.SurveyStatusActive},
	)
	return NewDashboardService(surveys, dashboards)
}

func TestDashboardSuperAdminSeesPlatformCounts(t *testing.T) {
	dashboards := &stubDashboardProvider{companies: 4, surveys: 12, total: 200, completed: 150}
	svc := dashboardFixture(dashboards)

	dashboard, err := svc.Get(context.Background(), domains.Actor{UserID: 1, Role: domains.RoleSuperAdmin})
	require.NoError(t, err)

	assert.Equal(t, domains.RoleSuperAdmin, dashboard.Role)
	assert.Equal(t, 4, dashboard.Companies)
	assert.Equal(t, 12, dashboard.Surveys)
	assert.Equal(t, 200, dashboard.TotalResponses)
	assert.Equal(t, 75, dashboard.CompletionRate)
}

func TestDashboardCompanyAdminGetsSiteBreakdown(t *testing.T) {
	dashboards := &stubDashboardProvider{
		surveys:   2,
		total:     40,
		completed: 30,
		sites: []domains.SiteBreakdown{
			{SiteID: 5, SiteName: "Lyon", TotalResponses: 25, Completed: 20, CompletionRate: 80},
			{SiteID: 6, SiteName: "Berlin", TotalResponses: 15, Completed: 10, CompletionRate: 67},
		},
	}
	svc := dashboardFixture(dashboards)

	dashboard, err := svc.Get(context.Background(), adminActor(10))
	require.NoError(t, err)

	assert.Equal(t, domains.RoleCompanyAdmin, dashboard.Role)
	assert.Equal(t, int64(10), dashboards.lastCompanyID)
	assert.Equal(t, 75, dashboard.CompletionRate)
	require.Len(t, dashboard.Sites, 2)
	assert.Equal(t, "Lyon", dashboard.Sites[0].SiteName)
}

func TestDashboardCompanyAdminWithoutCompanyFails(t *testing.T) {
	svc := dashboardFixture(&stubDashboardProvider{})

	_, err := svc.Get(context.Background(), domains.Actor{UserID: 7, Role: domains.RoleCompanyAdmin})
	assert.Error(t, err)
}

func TestDashboardSiteAdminScopedToSite(t *testing.T) {
	dashboards := &stubDashboardProvider{siteTotal: 18, siteCompleted: 9}
	svc := dashboardFixture(dashboards)

	actor := domains.Actor{
		UserID:    3,
		Role:      domains.RoleSiteAdmin,
		CompanyID: int64Ptr(10),
		SiteID:    int64Ptr(5),
	}
	dashboard, err := svc.Get(context.Background(), actor)
	require.NoError(t, err)

	assert.Equal(t, int64(5), dashboards.lastSiteID)
	assert.Equal(t, 18, dashboard.TotalResponses)
	assert.Equal(t, 50, dashboard.CompletionRate)
	// Survey count comes from the actor's company, not the whole platform.
	assert.Equal(t, 2, dashboard.Surveys)
}

func TestDashboardDepartmentAdminScopedToDepartment(t *testing.T) {
	dashboards := &stubDashboardProvider{deptTotal: 8, deptCompleted: 8}
	svc := dashboardFixture(dashboards)

	actor := domains.Actor{
		UserID:       4,
		Role:         domains.RoleDepartmentAdmin,
		CompanyID:    int64Ptr(10),
		SiteID:       int64Ptr(5),
		DepartmentID: int64Ptr(2),
	}
	dashboard, err := svc.Get(context.Background(), actor)
	require.NoError(t, err)

	assert.Equal(t, int64(2), dashboards.lastDepartmentID)
	assert.Equal(t, 100, dashboard.CompletionRate)
}

func TestDashboardUserGetsPersonalHistory(t *testing.T) {
	dashboards := &stubDashboardProvider{
		personal: []domains.PersonalEntry{
			{SurveyID: "s1", SurveyTitle: "Team Pulse", Status: domains.ResponseStatusCompleted},
			{SurveyID: "s2", SurveyTitle: "Onboarding", Status: domains.ResponseStatusStarted},
		},
	}
	svc := dashboardFixture(dashboards)

	dashboard, err := svc.Get(context.Background(), domains.Actor{UserID: 9, Role: domains.RoleUser})
	require.NoError(t, err)

	assert.Equal(t, domains.RoleUser, dashboard.Role)
	assert.Equal(t, 2, dashboard.TotalResponses)
	assert.Equal(t, 1, dashboard.Completed)
	assert.Equal(t, 50, dashboard.CompletionRate)
	require.Len(t, dashboard.Personal, 2)
}
