package domains

import "time"

type Role string

const (
	RoleSuperAdmin      Role = "super_admin"
	RoleCompanyAdmin    Role = "company_admin"
	RoleSiteAdmin       Role = "site_admin"
	RoleDepartmentAdmin Role = "department_admin"
	RoleUser            Role = "user"
)

// Level orders roles by authority, super_admin highest. Used both for
// delegation checks (nobody may assign a role above their own) and for
// dashboard dispatch.
func (r Role) Level() int {
	switch r {
	case RoleSuperAdmin:
		return 5
	case RoleCompanyAdmin:
		return 4
	case RoleSiteAdmin:
		return 3
	case RoleDepartmentAdmin:
		return 2
	case RoleUser:
		return 1
	default:
		return 0
	}
}

func (r Role) Valid() bool {
	return r.Level() > 0
}

// CanAssign reports whether an actor holding r may grant the target role.
func (r Role) CanAssign(target Role) bool {
	return target.Valid() && r.Level() >= target.Level()
}

// Actor is the explicit authorization context passed into every service
// operation. Handlers build it from the JWT claims; the core never reads
// ambient request state.
type Actor struct {
	UserID       int64
	Role         Role
	CompanyID    *int64
	SiteID       *int64
	DepartmentID *int64
}

// CoversCompany reports whether the actor's scope includes the company.
func (a Actor) CoversCompany(companyID int64) bool {
	if a.Role == RoleSuperAdmin {
		return true
	}
	return a.CompanyID != nil && *a.CompanyID == companyID
}

func (a Actor) CoversSite(companyID, siteID int64) bool {
	if !a.CoversCompany(companyID) {
		return false
	}
	switch a.Role {
	case RoleSuperAdmin, RoleCompanyAdmin:
		return true
	default:
		return a.SiteID != nil && *a.SiteID == siteID
	}
}

func (a Actor) CoversDepartment(companyID, siteID, departmentID int64) bool {
	if !a.CoversSite(companyID, siteID) {
		return false
	}
	switch a.Role {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleSiteAdmin:
		return true
	default:
		return a.DepartmentID != nil && *a.DepartmentID == departmentID
	}
}

type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Site struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Department struct {
	ID        int64     `json:"id"`
	SiteID    int64     `json:"site_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type User struct {
	ID           int64      `json:"id"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Password     string     `json:"-"`
	Role         Role       `json:"role"`
	CompanyID    *int64     `json:"company_id,omitempty"`
	SiteID       *int64     `json:"site_id,omitempty"`
	DepartmentID *int64     `json:"department_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DisabledAt   *time.Time `json:"disabled_at,omitempty"`
}

type UserCreate struct {
	FullName     string `json:"full_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	Role         Role   `json:"role"`
	CompanyID    *int64 `json:"company_id,omitempty"`
	SiteID       *int64 `json:"site_id,omitempty"`
	DepartmentID *int64 `json:"department_id,omitempty"`
}

// Actor projects a stored user into the authorization context.
func (u User) Actor() Actor {
	return Actor{
		UserID:       u.ID,
		Role:         u.Role,
		CompanyID:    u.CompanyID,
		SiteID:       u.SiteID,
		DepartmentID: u.DepartmentID,
	}
}
