package providers

import (
	"context"
	"errors"
	"fmt"

	"qualitivate/internal/domains"
	"qualitivate/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthProvider struct {
	db *pgxpool.Pool
}

func NewAuthProvider(db *pgxpool.Pool) *AuthProvider {
	return &AuthProvider{db: db}
}

const userColumns = `
	id, full_name, email, passhash AS password, role,
	company_id, site_id, department_id, created_at, disabled_at`

func (p *AuthProvider) SaveUser(ctx context.Context, passHash string, user domains.UserCreate) (domains.User, error) {
	const query = `
		INSERT INTO users (full_name, email, passhash, role, company_id, site_id, department_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7, NOW())
		RETURNING` + userColumns

	rows, err := p.db.Query(ctx, query,
		user.FullName,
		user.Email,
		passHash,
		string(user.Role),
		user.CompanyID,
		user.SiteID,
		user.DepartmentID,
	)
	if err != nil {
		return domains.User{}, fmt.Errorf("insert user: %w", err)
	}
	created, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.User])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domains.User{}, fmt.Errorf("insert user: %w", storage.ErrUserExist)
		}
		return domains.User{}, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (p *AuthProvider) GetUserByEmail(ctx context.Context, email string) (domains.User, error) {
	rows, err := p.db.Query(ctx,
		`SELECT`+userColumns+` FROM users WHERE email = $1 AND disabled_at IS NULL`, email)
	if err != nil {
		return domains.User{}, fmt.Errorf("get user by email: %w", err)
	}
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.User{}, fmt.Errorf("get user by email: %w", storage.ErrNotFound)
		}
		return domains.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (p *AuthProvider) GetUserByID(ctx context.Context, id int64) (domains.User, error) {
	rows, err := p.db.Query(ctx,
		`SELECT`+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return domains.User{}, fmt.Errorf("get user: %w", err)
	}
	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.User{}, fmt.Errorf("get user: %w", storage.ErrNotFound)
		}
		return domains.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (p *AuthProvider) ListUsersByCompany(ctx context.Context, companyID int64) ([]domains.User, error) {
	rows, err := p.db.Query(ctx,
		`SELECT`+userColumns+` FROM users WHERE company_id = $1 ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.User])
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
