package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"qualitivate/internal/domains"
	"qualitivate/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResponseProvider struct {
	db *pgxpool.Pool
}

func NewResponseProvider(db *pgxpool.Pool) *ResponseProvider {
	return &ResponseProvider{db: db}
}

const responseColumns = `
	id, survey_id, distribution_id, respondent_id, anonymous_token,
	status, language, meta, started_at, completed_at`

func scanResponse(row pgx.Row) (domains.Response, error) {
	var (
		response domains.Response
		meta     []byte
	)
	if err := row.Scan(
		&response.ID,
		&response.SurveyID,
		&response.DistributionID,
		&response.RespondentID,
		&response.AnonymousToken,
		&response.Status,
		&response.Language,
		&meta,
		&response.StartedAt,
		&response.CompletedAt,
	); err != nil {
		return domains.Response{}, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &response.Meta); err != nil {
			return domains.Response{}, fmt.Errorf("decode meta: %w", err)
		}
	}
	return response, nil
}

func (p *ResponseProvider) StartResponse(ctx context.Context, response domains.Response) (domains.Response, error) {
	meta, err := json.Marshal(response.Meta)
	if err != nil {
		return domains.Response{}, fmt.Errorf("marshal meta: %w", err)
	}

	row := p.db.QueryRow(ctx,
		`INSERT INTO responses (
			id, survey_id, distribution_id, respondent_id, anonymous_token,
			status, language, meta, started_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW())
		RETURNING`+responseColumns,
		response.ID,
		response.SurveyID,
		response.DistributionID,
		response.RespondentID,
		response.AnonymousToken,
		response.Status,
		response.Language,
		meta,
	)
	created, err := scanResponse(row)
	if err != nil {
		return domains.Response{}, fmt.Errorf("insert response: %w", err)
	}
	return created, nil
}

func (p *ResponseProvider) GetResponse(ctx context.Context, responseID string) (domains.Response, error) {
	row := p.db.QueryRow(ctx,
		`SELECT`+responseColumns+` FROM responses WHERE id = $1`, responseID)
	response, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Response{}, fmt.Errorf("get response: %w", storage.ErrNotFound)
		}
		return domains.Response{}, fmt.Errorf("get response: %w", err)
	}
	return response, nil
}

// SaveAnswer upserts the (response, question) value. The inner SELECT only
// yields a row while the response is still in started state, which blocks
// late writes to completed responses with the same ErrNotFound the caller
// gets for a missing response.
func (p *ResponseProvider) SaveAnswer(ctx context.Context, answerID, responseID, questionID string, value json.RawMessage) (domains.Answer, error) {
	const query = `
		INSERT INTO answers (id, response_id, question_id, value, answered_at)
		SELECT $1, r.id, $3, $4, NOW()
		FROM responses r
		WHERE r.id = $2 AND r.status = 'started'
		ON CONFLICT (response_id, question_id) DO UPDATE
		SET value = EXCLUDED.value, answered_at = EXCLUDED.answered_at
		RETURNING id, response_id, question_id, value, answered_at`

	rows, err := p.db.Query(ctx, query, answerID, responseID, questionID, value)
	if err != nil {
		return domains.Answer{}, fmt.Errorf("save answer: %w", err)
	}
	answer, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Answer])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Answer{}, fmt.Errorf("save answer: %w", storage.ErrNotFound)
		}
		return domains.Answer{}, fmt.Errorf("save answer: %w", err)
	}
	return answer, nil
}

func (p *ResponseProvider) ListAnswers(ctx context.Context, responseID string) ([]domains.Answer, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, response_id, question_id, value, answered_at
		 FROM answers WHERE response_id = $1 ORDER BY answered_at`, responseID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	answers, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Answer])
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	return answers, nil
}

// CompleteResponse persists the supplied answers and flips the response to
// completed in one transaction. The status guard on the final UPDATE makes
// double completion report ErrNotFound, matching the save-answer contract.
func (p *ResponseProvider) CompleteResponse(ctx context.Context, responseID string, answers []domains.Answer, completedAt time.Time) (domains.Response, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return domains.Response{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	const upsertAnswer = `
		INSERT INTO answers (id, response_id, question_id, value, answered_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (response_id, question_id) DO UPDATE
		SET value = EXCLUDED.value, answered_at = EXCLUDED.answered_at`

	for _, answer := range answers {
		if _, err := tx.Exec(ctx, upsertAnswer,
			answer.ID, responseID, answer.QuestionID, answer.Value, completedAt,
		); err != nil {
			return domains.Response{}, fmt.Errorf("upsert answer: %w", err)
		}
	}

	row := tx.QueryRow(ctx,
		`UPDATE responses SET status = 'completed', completed_at = $2
		 WHERE id = $1 AND status = 'started'
		 RETURNING`+responseColumns, responseID, completedAt)
	completed, err := scanResponse(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Response{}, fmt.Errorf("complete response: %w", storage.ErrNotFound)
		}
		return domains.Response{}, fmt.Errorf("complete response: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domains.Response{}, fmt.Errorf("commit: %w", err)
	}
	return completed, nil
}

func (p *ResponseProvider) ListRequiredQuestionIDs(ctx context.Context, surveyID string) ([]string, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id FROM questions WHERE survey_id = $1 AND is_required ORDER BY order_index`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list required questions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list required questions: %w", err)
	}
	return ids, nil
}

func (p *ResponseProvider) ListAnsweredQuestionIDs(ctx context.Context, responseID string) ([]string, error) {
	rows, err := p.db.Query(ctx,
		`SELECT question_id FROM answers WHERE response_id = $1`, responseID)
	if err != nil {
		return nil, fmt.Errorf("list answered questions: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list answered questions: %w", err)
	}
	return ids, nil
}

func (p *ResponseProvider) ListResponses(ctx context.Context, surveyID string, page, perPage int) (domains.ResponsePage, error) {
	var total int
	if err := p.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM responses WHERE survey_id = $1`, surveyID).Scan(&total); err != nil {
		return domains.ResponsePage{}, fmt.Errorf("count responses: %w", err)
	}

	rows, err := p.db.Query(ctx,
		`SELECT`+responseColumns+` FROM responses
		 WHERE survey_id = $1
		 ORDER BY started_at DESC
		 LIMIT $2 OFFSET $3`, surveyID, perPage, (page-1)*perPage)
	if err != nil {
		return domains.ResponsePage{}, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var responses []domains.Response
	for rows.Next() {
		response, err := scanResponse(rows)
		if err != nil {
			return domains.ResponsePage{}, fmt.Errorf("scan response: %w", err)
		}
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return domains.ResponsePage{}, fmt.Errorf("iterate responses: %w", err)
	}

	return domains.ResponsePage{
		Responses: responses,
		Total:     total,
		Page:      page,
		PerPage:   perPage,
	}, nil
}
