package httptransport

import (
	"context"
	"net/http"
	"strconv"

	"qualitivate/internal/domains"
	"qualitivate/internal/httpx"
)

type OrgHandlers struct {
	service OrgServices
}

type OrgServices interface {
	CreateCompany(ctx context.Context, actor domains.Actor, name string) (domains.Company, error)
	ListCompanies(ctx context.Context, actor domains.Actor) ([]domains.Company, error)
	GetCompany(ctx context.Context, actor domains.Actor, companyID int64) (domains.Company, error)
	CreateSite(ctx context.Context, actor domains.Actor, companyID int64, name string) (domains.Site, error)
	ListSites(ctx context.Context, actor domains.Actor, companyID int64) ([]domains.Site, error)
	CreateDepartment(ctx context.Context, actor domains.Actor, siteID int64, name string) (domains.Department, error)
	ListDepartments(ctx context.Context, actor domains.Actor, siteID int64) ([]domains.Department, error)
	ListUsers(ctx context.Context, actor domains.Actor, companyID int64) ([]domains.User, error)
}

func NewOrgHandlers(service OrgServices) *OrgHandlers {
	return &OrgHandlers{service: service}
}

func pathInt64(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(httpx.PathID(r, name), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *OrgHandlers) CreateCompany(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	body, err := httpx.ReadBody[NameRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	company, err := h.service.CreateCompany(r.Context(), actor, body.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}

func (h *OrgHandlers) ListCompanies(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	companies, err := h.service.ListCompanies(r.Context(), actor)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, companies)
}

func (h *OrgHandlers) GetCompany(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	companyID, ok := pathInt64(w, r, "companyId")
	if !ok {
		return
	}
	company, err := h.service.GetCompany(r.Context(), actor, companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *OrgHandlers) CreateSite(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	companyID, ok := pathInt64(w, r, "companyId")
	if !ok {
		return
	}
	body, err := httpx.ReadBody[NameRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	site, err := h.service.CreateSite(r.Context(), actor, companyID, body.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, site)
}

func (h *OrgHandlers) ListSites(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	companyID, ok := pathInt64(w, r, "companyId")
	if !ok {
		return
	}
	sites, err := h.service.ListSites(r.Context(), actor, companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sites)
}

func (h *OrgHandlers) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	siteID, ok := pathInt64(w, r, "siteId")
	if !ok {
		return
	}
	body, err := httpx.ReadBody[NameRequest](r)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	department, err := h.service.CreateDepartment(r.Context(), actor, siteID, body.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, department)
}

func (h *OrgHandlers) ListDepartments(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	siteID, ok := pathInt64(w, r, "siteId")
	if !ok {
		return
	}
	departments, err := h.service.ListDepartments(r.Context(), actor, siteID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, departments)
}

func (h *OrgHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	companyID, ok := pathInt64(w, r, "companyId")
	if !ok {
		return
	}
	users, err := h.service.ListUsers(r.Context(), actor, companyID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, users)
}
