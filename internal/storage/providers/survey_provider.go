package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"qualitivate/internal/domains"
	"qualitivate/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SurveyProvider struct {
	db *pgxpool.Pool
}

func NewSurveyProvider(db *pgxpool.Pool) *SurveyProvider {
	return &SurveyProvider{db: db}
}

const surveyColumns = `
	id, company_id, title, description, type, status,
	is_public, is_anonymous, default_language, settings,
	starts_at, ends_at, created_by, created_at, updated_at`

func (p *SurveyProvider) SaveSurvey(ctx context.Context, survey domains.Survey, questions []domains.Question) (domains.Survey, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertSurvey = `
		INSERT INTO surveys (
			id, company_id, title, description, type, status,
			is_public, is_anonymous, default_language, settings,
			starts_at, ends_at, created_by, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, NOW())
		RETURNING` + surveyColumns

	rows, err := tx.Query(ctx, insertSurvey,
		survey.ID,
		survey.CompanyID,
		survey.Title,
		survey.Description,
		survey.Type,
		survey.Status,
		survey.IsPublic,
		survey.IsAnonymous,
		survey.DefaultLanguage,
		survey.Settings,
		survey.StartsAt,
		survey.EndsAt,
		survey.CreatedBy,
	)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("insert survey: %w", err)
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Survey])
	if err != nil {
		return domains.Survey{}, fmt.Errorf("insert survey: %w", err)
	}

	for _, question := range questions {
		if err := insertQuestionTx(ctx, tx, question); err != nil {
			return domains.Survey{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Survey{}, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func (p *SurveyProvider) GetSurveyByID(ctx context.Context, surveyID string) (domains.Survey, error) {
	rows, err := p.db.Query(ctx,
		`SELECT`+surveyColumns+` FROM surveys WHERE id = $1`, surveyID)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("get survey: %w", err)
	}
	survey, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Survey])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Survey{}, fmt.Errorf("get survey: %w", storage.ErrNotFound)
		}
		return domains.Survey{}, fmt.Errorf("get survey: %w", err)
	}
	return survey, nil
}

// ListSurveys returns surveys visible in the given company scope. A nil
// companyID lists everything (super_admin) including global surveys.
func (p *SurveyProvider) ListSurveys(ctx context.Context, companyID *int64) ([]domains.Survey, error) {
	query := `SELECT` + surveyColumns + ` FROM surveys ORDER BY created_at DESC`
	args := []any{}
	if companyID != nil {
		query = `SELECT` + surveyColumns + ` FROM surveys
			WHERE company_id = $1 OR company_id IS NULL
			ORDER BY created_at DESC`
		args = append(args, *companyID)
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	surveys, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Survey])
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	return surveys, nil
}

func (p *SurveyProvider) UpdateSurvey(ctx context.Context, surveyID string, update domains.SurveyUpdate) (domains.Survey, error) {
	setClauses := make([]string, 0, 8)
	args := make([]any, 0, 9)
	idx := 1

	if update.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", idx))
		args = append(args, *update.Title)
		idx++
	}
	if update.Description.Present {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", idx))
		if update.Description.Value != nil {
			args = append(args, *update.Description.Value)
		} else {
			args = append(args, nil)
		}
		idx++
	}
	if update.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, *update.Status)
		idx++
	}
	if update.IsPublic != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_public = $%d", idx))
		args = append(args, *update.IsPublic)
		idx++
	}
	if update.IsAnonymous != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_anonymous = $%d", idx))
		args = append(args, *update.IsAnonymous)
		idx++
	}
	if len(update.Settings) > 0 {
		setClauses = append(setClauses, fmt.Sprintf("settings = $%d", idx))
		args = append(args, update.Settings)
		idx++
	}
	if update.StartsAt.Present {
		setClauses = append(setClauses, fmt.Sprintf("starts_at = $%d", idx))
		if update.StartsAt.Value != nil {
			args = append(args, *update.StartsAt.Value)
		} else {
			args = append(args, nil)
		}
		idx++
	}
	if update.EndsAt.Present {
		setClauses = append(setClauses, fmt.Sprintf("ends_at = $%d", idx))
		if update.EndsAt.Value != nil {
			args = append(args, *update.EndsAt.Value)
		} else {
			args = append(args, nil)
		}
		idx++
	}

	if len(setClauses) == 0 {
		return p.GetSurveyByID(ctx, surveyID)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, surveyID)
	query := fmt.Sprintf(`
		UPDATE surveys
		SET %s
		WHERE id = $%d
		RETURNING`+surveyColumns,
		strings.Join(setClauses, ", "), idx,
	)

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("update survey: %w", err)
	}
	updated, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Survey])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Survey{}, fmt.Errorf("update survey: %w", storage.ErrNotFound)
		}
		return domains.Survey{}, fmt.Errorf("update survey: %w", err)
	}
	return updated, nil
}

// DeleteSurveyCascade removes the survey and every dependent row in one
// transaction. The deletion order follows the foreign keys so the guarantee
// holds even without ON DELETE CASCADE in the schema.
func (p *SurveyProvider) DeleteSurveyCascade(ctx context.Context, surveyID string) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	steps := []string{
		`DELETE FROM answers WHERE response_id IN (SELECT id FROM responses WHERE survey_id = $1)`,
		`DELETE FROM responses WHERE survey_id = $1`,
		`DELETE FROM question_translations WHERE question_id IN (SELECT id FROM questions WHERE survey_id = $1)`,
		`DELETE FROM distributions WHERE survey_id = $1`,
		`DELETE FROM questions WHERE survey_id = $1`,
	}
	for _, step := range steps {
		if _, err := tx.Exec(ctx, step, surveyID); err != nil {
			return fmt.Errorf("delete survey cascade: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM surveys WHERE id = $1`, surveyID)
	if err != nil {
		return fmt.Errorf("delete survey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete survey: %w", storage.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DuplicateSurvey copies a survey with its questions into a fresh draft.
// Responses and distributions are not carried over.
func (p *SurveyProvider) DuplicateSurvey(ctx context.Context, surveyID, newID, title string, createdBy int64) (domains.Survey, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const copySurvey = `
		INSERT INTO surveys (
			id, company_id, title, description, type, status,
			is_public, is_anonymous, default_language, settings,
			starts_at, ends_at, created_by, created_at
		)
		SELECT $2, company_id, $3, description, type, 'draft',
			is_public, is_anonymous, default_language, settings,
			NULL, NULL, $4, NOW()
		FROM surveys WHERE id = $1
		RETURNING` + surveyColumns

	rows, err := tx.Query(ctx, copySurvey, surveyID, newID, title, createdBy)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("duplicate survey: %w", err)
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Survey])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Survey{}, fmt.Errorf("duplicate survey: %w", storage.ErrNotFound)
		}
		return domains.Survey{}, fmt.Errorf("duplicate survey: %w", err)
	}

	questionRows, err := tx.Query(ctx,
		`SELECT id, type, content, options, skip_rules, is_required, order_index
		 FROM questions WHERE survey_id = $1 ORDER BY order_index`, surveyID)
	if err != nil {
		return domains.Survey{}, fmt.Errorf("duplicate questions: %w", err)
	}

	type questionCopy struct {
		oldID      string
		qType      string
		content    string
		options    []byte
		skipRules  []byte
		isRequired bool
		orderIndex int
	}
	var copies []questionCopy
	for questionRows.Next() {
		var q questionCopy
		if err := questionRows.Scan(&q.oldID, &q.qType, &q.content, &q.options, &q.skipRules, &q.isRequired, &q.orderIndex); err != nil {
			questionRows.Close()
			return domains.Survey{}, fmt.Errorf("scan question: %w", err)
		}
		copies = append(copies, q)
	}
	questionRows.Close()
	if err := questionRows.Err(); err != nil {
		return domains.Survey{}, fmt.Errorf("iterate questions: %w", err)
	}

	// Skip rule targets reference question ids, so the copies need a
	// consistent id remapping.
	idMap := make(map[string]string, len(copies))
	for _, q := range copies {
		idMap[q.oldID] = uuid.NewString()
	}

	const insertQuestion = `
		INSERT INTO questions (id, survey_id, type, content, options, skip_rules, is_required, order_index)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	for _, q := range copies {
		rules := remapSkipRuleTargets(q.skipRules, idMap)
		if _, err := tx.Exec(ctx, insertQuestion,
			idMap[q.oldID], newID, q.qType, q.content, q.options, rules, q.isRequired, q.orderIndex,
		); err != nil {
			return domains.Survey{}, fmt.Errorf("copy question: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Survey{}, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

func remapSkipRuleTargets(raw []byte, idMap map[string]string) []byte {
	if len(raw) == 0 {
		return raw
	}
	var rules []domains.SkipRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return raw
	}
	for i := range rules {
		if mapped, ok := idMap[rules[i].Target]; ok {
			rules[i].Target = mapped
		}
	}
	remapped, err := json.Marshal(rules)
	if err != nil {
		return raw
	}
	return remapped
}

func (p *SurveyProvider) CountResponses(ctx context.Context, surveyID string) (int, error) {
	var count int
	if err := p.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE survey_id = $1`, surveyID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return count, nil
}

// ActivateScheduledSurveys opens drafts whose window has started.
func (p *SurveyProvider) ActivateScheduledSurveys(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx,
		`UPDATE surveys SET status = 'active'
		 WHERE status = 'draft' AND starts_at IS NOT NULL AND starts_at <= $1
		   AND (ends_at IS NULL OR ends_at > $1)`, now)
	if err != nil {
		return 0, fmt.Errorf("activate scheduled surveys: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CloseExpiredSurveys closes active surveys past their end window.
func (p *SurveyProvider) CloseExpiredSurveys(ctx context.Context, now time.Time) (int64, error) {
	tag, err := p.db.Exec(ctx,
		`UPDATE surveys SET status = 'closed'
		 WHERE status = 'active' AND ends_at IS NOT NULL AND ends_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("close expired surveys: %w", err)
	}
	return tag.RowsAffected(), nil
}
