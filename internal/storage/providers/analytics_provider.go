package providers

import (
	"context"
	"fmt"
	"time"

	"qualitivate/internal/domains"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalyticsProvider struct {
	db *pgxpool.Pool
}

func NewAnalyticsProvider(db *pgxpool.Pool) *AnalyticsProvider {
	return &AnalyticsProvider{db: db}
}

func (p *AnalyticsProvider) GetResponseCounts(ctx context.Context, surveyID string) (total, completed int, err error) {
	err = p.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE status = 'completed')
		 FROM responses WHERE survey_id = $1`, surveyID).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("response counts: %w", err)
	}
	return total, completed, nil
}

// ListCompletedAnswers returns every answer belonging to a completed
// response of the survey. Aggregation happens in the service so the numeric
// coercion of stored values lives in exactly one place.
func (p *AnalyticsProvider) ListCompletedAnswers(ctx context.Context, surveyID string) ([]domains.Answer, error) {
	rows, err := p.db.Query(ctx,
		`SELECT a.id, a.response_id, a.question_id, a.value, a.answered_at
		 FROM answers a
		 JOIN responses r ON r.id = a.response_id
		 WHERE r.survey_id = $1 AND r.status = 'completed'`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list completed answers: %w", err)
	}
	answers, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Answer])
	if err != nil {
		return nil, fmt.Errorf("list completed answers: %w", err)
	}
	return answers, nil
}

// ListCompletedResponses returns the survey's completed responses in
// completion order, for export.
func (p *AnalyticsProvider) ListCompletedResponses(ctx context.Context, surveyID string) ([]domains.Response, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, survey_id, distribution_id, respondent_id, anonymous_token,
		        status, language, meta, started_at, completed_at
		 FROM responses
		 WHERE survey_id = $1 AND status = 'completed'
		 ORDER BY completed_at`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list completed responses: %w", err)
	}
	defer rows.Close()

	var responses []domains.Response
	for rows.Next() {
		response, err := scanResponse(rows)
		if err != nil {
			return nil, fmt.Errorf("scan completed response: %w", err)
		}
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completed responses: %w", err)
	}
	return responses, nil
}

// GetTrend buckets responses by calendar day since the cutoff.
func (p *AnalyticsProvider) GetTrend(ctx context.Context, surveyID string, since time.Time) ([]domains.TrendPoint, error) {
	const query = `
		SELECT
			to_char(d.day, 'YYYY-MM-DD') AS date,
			COALESCE(s.started, 0) AS started,
			COALESCE(c.completed, 0) AS completed
		FROM generate_series(date($2), date(now()), interval '1 day') AS d(day)
		LEFT JOIN (
			SELECT date(started_at) AS day, COUNT(*) AS started
			FROM responses
			WHERE survey_id = $1 AND started_at >= $2
			GROUP BY date(started_at)
		) s ON s.day = d.day
		LEFT JOIN (
			SELECT date(completed_at) AS day, COUNT(*) AS completed
			FROM responses
			WHERE survey_id = $1 AND completed_at >= $2
			GROUP BY date(completed_at)
		) c ON c.day = d.day
		ORDER BY d.day`

	rows, err := p.db.Query(ctx, query, surveyID, since)
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}
	points, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.TrendPoint])
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}
	return points, nil
}

// GetPlatformCounts feeds the super_admin dashboard.
func (p *AnalyticsProvider) GetPlatformCounts(ctx context.Context) (companies, surveys, total, completed int, err error) {
	err = p.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM companies),
			(SELECT COUNT(*) FROM surveys),
			(SELECT COUNT(*) FROM responses),
			(SELECT COUNT(*) FROM responses WHERE status = 'completed')`,
	).Scan(&companies, &surveys, &total, &completed)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("platform counts: %w", err)
	}
	return companies, surveys, total, completed, nil
}

func (p *AnalyticsProvider) GetCompanyCounts(ctx context.Context, companyID int64) (surveys, total, completed int, err error) {
	err = p.db.QueryRow(ctx, `
		SELECT
			COUNT(DISTINCT s.id),
			COUNT(r.id),
			COUNT(r.id) FILTER (WHERE r.status = 'completed')
		FROM surveys s
		LEFT JOIN responses r ON r.survey_id = s.id
		WHERE s.company_id = $1`, companyID,
	).Scan(&surveys, &total, &completed)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("company counts: %w", err)
	}
	return surveys, total, completed, nil
}

// GetSiteBreakdown attributes a company's responses to sites through the
// authenticated respondent. Anonymous responses carry no site and are left
// out of the per-site rows.
func (p *AnalyticsProvider) GetSiteBreakdown(ctx context.Context, companyID int64) ([]domains.SiteBreakdown, error) {
	const query = `
		SELECT
			st.id AS site_id,
			st.name AS site_name,
			COUNT(r.id) AS total_responses,
			COUNT(r.id) FILTER (WHERE r.status = 'completed') AS completed
		FROM sites st
		LEFT JOIN users u ON u.site_id = st.id
		LEFT JOIN responses r ON r.respondent_id = u.id
		WHERE st.company_id = $1
		GROUP BY st.id, st.name
		ORDER BY st.id`

	rows, err := p.db.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("site breakdown: %w", err)
	}
	defer rows.Close()

	var breakdown []domains.SiteBreakdown
	for rows.Next() {
		var row domains.SiteBreakdown
		if err := rows.Scan(&row.SiteID, &row.SiteName, &row.TotalResponses, &row.Completed); err != nil {
			return nil, fmt.Errorf("scan site breakdown: %w", err)
		}
		row.CompletionRate = domains.CompletionRate(row.Completed, row.TotalResponses)
		breakdown = append(breakdown, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate site breakdown: %w", err)
	}
	return breakdown, nil
}

func (p *AnalyticsProvider) GetSiteCounts(ctx context.Context, siteID int64) (total, completed int, err error) {
	err = p.db.QueryRow(ctx, `
		SELECT
			COUNT(r.id),
			COUNT(r.id) FILTER (WHERE r.status = 'completed')
		FROM responses r
		JOIN users u ON u.id = r.respondent_id
		WHERE u.site_id = $1`, siteID,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("site counts: %w", err)
	}
	return total, completed, nil
}

func (p *AnalyticsProvider) GetDepartmentCounts(ctx context.Context, departmentID int64) (total, completed int, err error) {
	err = p.db.QueryRow(ctx, `
		SELECT
			COUNT(r.id),
			COUNT(r.id) FILTER (WHERE r.status = 'completed')
		FROM responses r
		JOIN users u ON u.id = r.respondent_id
		WHERE u.department_id = $1`, departmentID,
	).Scan(&total, &completed)
	if err != nil {
		return 0, 0, fmt.Errorf("department counts: %w", err)
	}
	return total, completed, nil
}

// ListPersonalEntries returns one entry per response the user has started,
// with the owning survey's title.
func (p *AnalyticsProvider) ListPersonalEntries(ctx context.Context, userID int64) ([]domains.PersonalEntry, error) {
	rows, err := p.db.Query(ctx, `
		SELECT s.id AS survey_id, s.title AS survey_title, r.status, r.completed_at
		FROM responses r
		JOIN surveys s ON s.id = r.survey_id
		WHERE r.respondent_id = $1
		ORDER BY r.started_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("personal entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.PersonalEntry])
	if err != nil {
		return nil, fmt.Errorf("personal entries: %w", err)
	}
	return entries, nil
}
