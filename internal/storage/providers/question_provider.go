package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"qualitivate/internal/domains"
	"qualitivate/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionProvider struct {
	db *pgxpool.Pool
}

func NewQuestionProvider(db *pgxpool.Pool) *QuestionProvider {
	return &QuestionProvider{db: db}
}

func insertQuestionTx(ctx context.Context, tx pgx.Tx, question domains.Question) error {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return fmt.Errorf("marshal options: %w", err)
	}
	rules, err := json.Marshal(question.SkipRules)
	if err != nil {
		return fmt.Errorf("marshal skip rules: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO questions (id, survey_id, type, content, options, skip_rules, is_required, order_index)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		question.ID,
		question.SurveyID,
		question.Type,
		question.Content,
		options,
		rules,
		question.IsRequired,
		question.OrderIndex,
	); err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

// AddQuestion appends a question at the end of the survey's order.
func (p *QuestionProvider) AddQuestion(ctx context.Context, question domains.Question) (domains.Question, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return domains.Question{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(order_index) + 1, 0) FROM questions WHERE survey_id = $1`,
		question.SurveyID,
	).Scan(&question.OrderIndex); err != nil {
		return domains.Question{}, fmt.Errorf("next order index: %w", err)
	}

	if err := insertQuestionTx(ctx, tx, question); err != nil {
		return domains.Question{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domains.Question{}, fmt.Errorf("commit: %w", err)
	}
	return question, nil
}

const questionColumns = `id, survey_id, type, content, options, skip_rules, is_required, order_index`

func scanQuestion(row pgx.Row) (domains.Question, error) {
	var (
		question domains.Question
		options  []byte
		rules    []byte
	)
	if err := row.Scan(
		&question.ID,
		&question.SurveyID,
		&question.Type,
		&question.Content,
		&options,
		&rules,
		&question.IsRequired,
		&question.OrderIndex,
	); err != nil {
		return domains.Question{}, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &question.Options); err != nil {
			return domains.Question{}, fmt.Errorf("decode options: %w", err)
		}
	}
	if len(rules) > 0 {
		if err := json.Unmarshal(rules, &question.SkipRules); err != nil {
			return domains.Question{}, fmt.Errorf("decode skip rules: %w", err)
		}
	}
	return question, nil
}

func (p *QuestionProvider) GetQuestion(ctx context.Context, questionID string) (domains.Question, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, questionID)
	question, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Question{}, fmt.Errorf("get question: %w", storage.ErrNotFound)
		}
		return domains.Question{}, fmt.Errorf("get question: %w", err)
	}
	return question, nil
}

func (p *QuestionProvider) ListQuestions(ctx context.Context, surveyID string) ([]domains.Question, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE survey_id = $1 ORDER BY order_index`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var questions []domains.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}
	return questions, nil
}

func (p *QuestionProvider) UpdateQuestion(ctx context.Context, questionID string, update domains.QuestionUpdate) (domains.Question, error) {
	setClauses := make([]string, 0, 4)
	args := make([]any, 0, 5)
	idx := 1

	if update.Content != nil {
		setClauses = append(setClauses, fmt.Sprintf("content = $%d", idx))
		args = append(args, *update.Content)
		idx++
	}
	if update.Options != nil {
		options, err := json.Marshal(*update.Options)
		if err != nil {
			return domains.Question{}, fmt.Errorf("marshal options: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("options = $%d", idx))
		args = append(args, options)
		idx++
	}
	if update.SkipRules != nil {
		rules, err := json.Marshal(*update.SkipRules)
		if err != nil {
			return domains.Question{}, fmt.Errorf("marshal skip rules: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("skip_rules = $%d", idx))
		args = append(args, rules)
		idx++
	}
	if update.IsRequired != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_required = $%d", idx))
		args = append(args, *update.IsRequired)
		idx++
	}

	if len(setClauses) == 0 {
		return p.GetQuestion(ctx, questionID)
	}

	args = append(args, questionID)
	query := fmt.Sprintf(
		`UPDATE questions SET %s WHERE id = $%d RETURNING `+questionColumns,
		strings.Join(setClauses, ", "), idx,
	)

	row := p.db.QueryRow(ctx, query, args...)
	question, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Question{}, fmt.Errorf("update question: %w", storage.ErrNotFound)
		}
		return domains.Question{}, fmt.Errorf("update question: %w", err)
	}
	return question, nil
}

// DeleteQuestion removes the question together with its answers and
// translations, then compacts the remaining order indices so they stay
// contiguous.
func (p *QuestionProvider) DeleteQuestion(ctx context.Context, questionID string) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		surveyID   string
		orderIndex int
	)
	if err := tx.QueryRow(ctx,
		`SELECT survey_id, order_index FROM questions WHERE id = $1`, questionID,
	).Scan(&surveyID, &orderIndex); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("delete question: %w", storage.ErrNotFound)
		}
		return fmt.Errorf("delete question: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM answers WHERE question_id = $1`, questionID); err != nil {
		return fmt.Errorf("delete question answers: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM question_translations WHERE question_id = $1`, questionID); err != nil {
		return fmt.Errorf("delete question translations: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE id = $1`, questionID); err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`UPDATE questions SET order_index = order_index - 1
		 WHERE survey_id = $1 AND order_index > $2`, surveyID, orderIndex); err != nil {
		return fmt.Errorf("compact order indices: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ReorderQuestions rewrites order indices 0..N-1 following the supplied id
// order in a single transaction. Indices are parked at an offset first so
// the unique (survey_id, order_index) constraint never trips mid-rewrite.
func (p *QuestionProvider) ReorderQuestions(ctx context.Context, surveyID string, orderedIDs []string) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE questions SET order_index = order_index + 1000000 WHERE survey_id = $1`,
		surveyID); err != nil {
		return fmt.Errorf("park order indices: %w", err)
	}

	for i, id := range orderedIDs {
		tag, err := tx.Exec(ctx,
			`UPDATE questions SET order_index = $1 WHERE id = $2 AND survey_id = $3`,
			i, id, surveyID)
		if err != nil {
			return fmt.Errorf("reorder question %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("reorder question %s: %w", id, storage.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (p *QuestionProvider) UpsertTranslation(ctx context.Context, translation domains.Translation) (domains.Translation, error) {
	rows, err := p.db.Query(ctx,
		`INSERT INTO question_translations (id, question_id, language, content, options)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (question_id, language) DO UPDATE
		 SET content = EXCLUDED.content, options = EXCLUDED.options
		 RETURNING id, question_id, language, content, options`,
		translation.ID,
		translation.QuestionID,
		translation.Language,
		translation.Content,
		translation.Options,
	)
	if err != nil {
		return domains.Translation{}, fmt.Errorf("upsert translation: %w", err)
	}
	saved, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Translation])
	if err != nil {
		return domains.Translation{}, fmt.Errorf("upsert translation: %w", err)
	}
	return saved, nil
}

// ListTranslations returns the translations for every question of a survey
// in the requested language.
func (p *QuestionProvider) ListTranslations(ctx context.Context, surveyID, language string) ([]domains.Translation, error) {
	rows, err := p.db.Query(ctx,
		`SELECT t.id, t.question_id, t.language, t.content, t.options
		 FROM question_translations t
		 JOIN questions q ON q.id = t.question_id
		 WHERE q.survey_id = $1 AND t.language = $2`, surveyID, language)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	translations, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Translation])
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	return translations, nil
}
