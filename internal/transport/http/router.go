package httptransport

import (
	"net/http"

	"qualitivate/internal/config"
	"qualitivate/internal/httpx"
	"qualitivate/internal/mail"
	"qualitivate/internal/service"
	"qualitivate/internal/storage/providers"

	"github.com/gorilla/mux"
)

func Router(allProviders *providers.Providers, cfg *config.Config) *mux.Router {
	authService := service.NewAuthService(allProviders.AuthProvider, cfg.JWT.Secret)
	orgService := service.NewOrgService(allProviders.OrgProvider, allProviders.AuthProvider)
	surveyService := service.NewSurveyService(allProviders.SurveyProvider, allProviders.QuestionProvider)
	questionService := service.NewQuestionService(allProviders.SurveyProvider, allProviders.QuestionProvider)
	responseService := service.NewResponseService(allProviders.SurveyProvider, allProviders.ResponseProvider)
	analyticsService := service.NewAnalyticsService(
		allProviders.SurveyProvider,
		allProviders.QuestionProvider,
		allProviders.ResponseProvider,
		allProviders.AnalyticsProvider,
	)
	dashboardService := service.NewDashboardService(allProviders.SurveyProvider, allProviders.AnalyticsProvider)
	exportService := service.NewExportService(
		allProviders.SurveyProvider,
		allProviders.QuestionProvider,
		analyticsService,
		allProviders.AnalyticsProvider,
	)

	var mailer service.Mailer
	if m := mail.New(cfg.SMTP); m != nil {
		mailer = m
	}
	distributionService := service.NewDistributionService(
		allProviders.SurveyProvider,
		allProviders.DistributionProvider,
		mailer,
		cfg.App.BaseURL,
	)

	authHandler := NewAuthHandlers(authService)
	orgHandler := NewOrgHandlers(orgService)
	surveyHandler := NewSurveyHandlers(surveyService)
	questionHandler := NewQuestionHandlers(questionService)
	responseHandler := NewResponseHandlers(responseService, surveyService)
	analyticsHandler := NewAnalyticsHandlers(analyticsService, dashboardService)
	exportHandler := NewExportHandlers(exportService)
	distributionHandler := NewDistributionHandlers(distributionService)

	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)
	auth.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	// Public survey taking. MaybeAuthenticated attributes logged-in
	// respondents without requiring a token.
	public := api.PathPrefix("/public").Subrouter()
	public.Use(httpx.MaybeAuthenticated(cfg.JWT.Secret))
	public.HandleFunc("/surveys/{id}", surveyHandler.View).Methods(http.MethodGet)
	public.HandleFunc("/surveys/{id}/responses", responseHandler.Start).Methods(http.MethodPost)
	public.HandleFunc("/surveys/{id}/next", responseHandler.Next).Methods(http.MethodPost)
	public.HandleFunc("/responses/{responseId}/answers", responseHandler.SaveAnswer).Methods(http.MethodPost)
	public.HandleFunc("/responses/{responseId}/submit", responseHandler.Submit).Methods(http.MethodPost)
	public.HandleFunc("/responses/{responseId}/complete", responseHandler.Complete).Methods(http.MethodPost)
	public.HandleFunc("/responses/{responseId}", responseHandler.Progress).Methods(http.MethodGet)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(httpx.Protected(cfg.JWT.Secret), httpx.WithActor(allProviders.AuthProvider))

	protected.HandleFunc("/auth/register", authHandler.Register).Methods(http.MethodPost)
	protected.HandleFunc("/dashboard", analyticsHandler.Dashboard).Methods(http.MethodGet)

	protected.HandleFunc("/companies", orgHandler.CreateCompany).Methods(http.MethodPost)
	protected.HandleFunc("/companies", orgHandler.ListCompanies).Methods(http.MethodGet)
	protected.HandleFunc("/companies/{companyId}", orgHandler.GetCompany).Methods(http.MethodGet)
	protected.HandleFunc("/companies/{companyId}/sites", orgHandler.CreateSite).Methods(http.MethodPost)
	protected.HandleFunc("/companies/{companyId}/sites", orgHandler.ListSites).Methods(http.MethodGet)
	protected.HandleFunc("/companies/{companyId}/users", orgHandler.ListUsers).Methods(http.MethodGet)
	protected.HandleFunc("/sites/{siteId}/departments", orgHandler.CreateDepartment).Methods(http.MethodPost)
	protected.HandleFunc("/sites/{siteId}/departments", orgHandler.ListDepartments).Methods(http.MethodGet)

	protected.HandleFunc("/surveys", surveyHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/surveys", surveyHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/surveys/{id}", surveyHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/surveys/{id}", surveyHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/surveys/{id}", surveyHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/surveys/{id}/duplicate", surveyHandler.Duplicate).Methods(http.MethodPost)

	protected.HandleFunc("/surveys/{id}/questions", questionHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/surveys/{id}/questions", questionHandler.Add).Methods(http.MethodPost)
	protected.HandleFunc("/surveys/{id}/questions/reorder", questionHandler.Reorder).Methods(http.MethodPut)
	protected.HandleFunc("/questions/{questionId}", questionHandler.Update).Methods(http.MethodPut)
	protected.HandleFunc("/questions/{questionId}", questionHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/questions/{questionId}/translations", questionHandler.UpsertTranslation).Methods(http.MethodPut)

	protected.HandleFunc("/surveys/{id}/analytics", analyticsHandler.Overview).Methods(http.MethodGet)
	protected.HandleFunc("/surveys/{id}/analytics/questions", analyticsHandler.Questions).Methods(http.MethodGet)
	protected.HandleFunc("/surveys/{id}/responses", analyticsHandler.Responses).Methods(http.MethodGet)
	protected.HandleFunc("/responses/{responseId}/detail", analyticsHandler.ResponseDetail).Methods(http.MethodGet)

	protected.HandleFunc("/surveys/{id}/export", exportHandler.Export).Methods(http.MethodGet)

	protected.HandleFunc("/surveys/{id}/distributions", distributionHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/surveys/{id}/distributions", distributionHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/distributions/{distributionId}", distributionHandler.Get).Methods(http.MethodGet)

	return router
}
