package providers

import "github.com/jackc/pgx/v5/pgxpool"

type Providers struct {
	AuthProvider         *AuthProvider
	OrgProvider          *OrgProvider
	SurveyProvider       *SurveyProvider
	QuestionProvider     *QuestionProvider
	ResponseProvider     *ResponseProvider
	AnalyticsProvider    *AnalyticsProvider
	DistributionProvider *DistributionProvider
}

func New(db *pgxpool.Pool) *Providers {
	return &Providers{
		AuthProvider:         NewAuthProvider(db),
		OrgProvider:          NewOrgProvider(db),
		SurveyProvider:       NewSurveyProvider(db),
		QuestionProvider:     NewQuestionProvider(db),
		ResponseProvider:     NewResponseProvider(db),
		AnalyticsProvider:    NewAnalyticsProvider(db),
		DistributionProvider: NewDistributionProvider(db),
	}
}
