package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"qualitivate/internal/domains"
	"qualitivate/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DistributionProvider struct {
	db *pgxpool.Pool
}

func NewDistributionProvider(db *pgxpool.Pool) *DistributionProvider {
	return &DistributionProvider{db: db}
}

const distributionColumns = `
	id, survey_id, channel, target_url, qr_image, embed_code,
	email_sends, created_by, created_at`

func scanDistribution(row pgx.Row) (domains.Distribution, error) {
	var (
		distribution domains.Distribution
		emailSends   []byte
	)
	if err := row.Scan(
		&distribution.ID,
		&distribution.SurveyID,
		&distribution.Channel,
		&distribution.TargetURL,
		&distribution.QRImage,
		&distribution.EmbedCode,
		&emailSends,
		&distribution.CreatedBy,
		&distribution.CreatedAt,
	); err != nil {
		return domains.Distribution{}, err
	}
	if len(emailSends) > 0 {
		if err := json.Unmarshal(emailSends, &distribution.EmailSends); err != nil {
			return domains.Distribution{}, fmt.Errorf("decode email sends: %w", err)
		}
	}
	return distribution, nil
}

func (p *DistributionProvider) SaveDistribution(ctx context.Context, distribution domains.Distribution) (domains.Distribution, error) {
	emailSends, err := json.Marshal(distribution.EmailSends)
	if err != nil {
		return domains.Distribution{}, fmt.Errorf("marshal email sends: %w", err)
	}

	row := p.db.QueryRow(ctx,
		`INSERT INTO distributions (
			id, survey_id, channel, target_url, qr_image, embed_code,
			email_sends, created_by, created_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8, NOW())
		RETURNING`+distributionColumns,
		distribution.ID,
		distribution.SurveyID,
		distribution.Channel,
		distribution.TargetURL,
		distribution.QRImage,
		distribution.EmbedCode,
		emailSends,
		distribution.CreatedBy,
	)
	created, err := scanDistribution(row)
	if err != nil {
		return domains.Distribution{}, fmt.Errorf("insert distribution: %w", err)
	}
	return created, nil
}

func (p *DistributionProvider) GetDistribution(ctx context.Context, distributionID string) (domains.Distribution, error) {
	row := p.db.QueryRow(ctx,
		`SELECT`+distributionColumns+` FROM distributions WHERE id = $1`, distributionID)
	distribution, err := scanDistribution(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Distribution{}, fmt.Errorf("get distribution: %w", storage.ErrNotFound)
		}
		return domains.Distribution{}, fmt.Errorf("get distribution: %w", err)
	}
	return distribution, nil
}

// ListDistributions returns a survey's distributions with the number of
// responses attributed to each.
func (p *DistributionProvider) ListDistributions(ctx context.Context, surveyID string) ([]domains.DistributionSummary, error) {
	rows, err := p.db.Query(ctx,
		`SELECT
			d.id, d.survey_id, d.channel, d.target_url, d.qr_image, d.embed_code,
			d.email_sends, d.created_by, d.created_at, COUNT(r.id) AS response_count
		 FROM distributions d
		 LEFT JOIN responses r ON r.distribution_id = d.id
		 WHERE d.survey_id = $1
		 GROUP BY d.id
		 ORDER BY d.created_at DESC`, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list distributions: %w", err)
	}
	defer rows.Close()

	var summaries []domains.DistributionSummary
	for rows.Next() {
		var (
			summary    domains.DistributionSummary
			emailSends []byte
		)
		if err := rows.Scan(
			&summary.Distribution.ID,
			&summary.Distribution.SurveyID,
			&summary.Distribution.Channel,
			&summary.Distribution.TargetURL,
			&summary.Distribution.QRImage,
			&summary.Distribution.EmbedCode,
			&emailSends,
			&summary.Distribution.CreatedBy,
			&summary.Distribution.CreatedAt,
			&summary.ResponseCount,
		); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		if len(emailSends) > 0 {
			if err := json.Unmarshal(emailSends, &summary.Distribution.EmailSends); err != nil {
				return nil, fmt.Errorf("decode email sends: %w", err)
			}
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distributions: %w", err)
	}
	return summaries, nil
}
