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

type OrgProvider struct {
	db *pgxpool.Pool
}

func NewOrgProvider(db *pgxpool.Pool) *OrgProvider {
	return &OrgProvider{db: db}
}

func (p *OrgProvider) SaveCompany(ctx context.Context, name string) (domains.Company, error) {
	rows, err := p.db.Query(ctx,
		`INSERT INTO companies (name, created_at) VALUES ($1, NOW())
		 RETURNING id, name, created_at`, name)
	if err != nil {
		return domains.Company{}, fmt.Errorf("insert company: %w", err)
	}
	company, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Company])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domains.Company{}, fmt.Errorf("insert company: %w", storage.ErrConflict)
		}
		return domains.Company{}, fmt.Errorf("insert company: %w", err)
	}
	return company, nil
}

func (p *OrgProvider) GetCompany(ctx context.Context, id int64) (domains.Company, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, name, created_at FROM companies WHERE id = $1`, id)
	if err != nil {
		return domains.Company{}, fmt.Errorf("get company: %w", err)
	}
	company, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Company])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Company{}, fmt.Errorf("get company: %w", storage.ErrNotFound)
		}
		return domains.Company{}, fmt.Errorf("get company: %w", err)
	}
	return company, nil
}

func (p *OrgProvider) ListCompanies(ctx context.Context) ([]domains.Company, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, name, created_at FROM companies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	companies, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Company])
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

func (p *OrgProvider) SaveSite(ctx context.Context, companyID int64, name string) (domains.Site, error) {
	rows, err := p.db.Query(ctx,
		`INSERT INTO sites (company_id, name, created_at) VALUES ($1, $2, NOW())
		 RETURNING id, company_id, name, created_at`, companyID, name)
	if err != nil {
		return domains.Site{}, fmt.Errorf("insert site: %w", err)
	}
	site, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Site])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domains.Site{}, fmt.Errorf("insert site: %w", storage.ErrNotFound)
		}
		return domains.Site{}, fmt.Errorf("insert site: %w", err)
	}
	return site, nil
}

func (p *OrgProvider) GetSite(ctx context.Context, id int64) (domains.Site, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, company_id, name, created_at FROM sites WHERE id = $1`, id)
	if err != nil {
		return domains.Site{}, fmt.Errorf("get site: %w", err)
	}
	site, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Site])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domains.Site{}, fmt.Errorf("get site: %w", storage.ErrNotFound)
		}
		return domains.Site{}, fmt.Errorf("get site: %w", err)
	}
	return site, nil
}

func (p *OrgProvider) ListSitesByCompany(ctx context.Context, companyID int64) ([]domains.Site, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, company_id, name, created_at FROM sites WHERE company_id = $1 ORDER BY id`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	sites, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Site])
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return sites, nil
}

func (p *OrgProvider) SaveDepartment(ctx context.Context, siteID int64, name string) (domains.Department, error) {
	rows, err := p.db.Query(ctx,
		`INSERT INTO departments (site_id, name, created_at) VALUES ($1, $2, NOW())
		 RETURNING id, site_id, name, created_at`, siteID, name)
	if err != nil {
		return domains.Department{}, fmt.Errorf("insert department: %w", err)
	}
	department, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[domains.Department])
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domains.Department{}, fmt.Errorf("insert department: %w", storage.ErrNotFound)
		}
		return domains.Department{}, fmt.Errorf("insert department: %w", err)
	}
	return department, nil
}

func (p *OrgProvider) ListDepartmentsBySite(ctx context.Context, siteID int64) ([]domains.Department, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, site_id, name, created_at FROM departments WHERE site_id = $1 ORDER BY id`, siteID)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	departments, err := pgx.CollectRows(rows, pgx.RowToStructByName[domains.Department])
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}
