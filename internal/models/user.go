package models

import "time"

// UserRole represents the available roles for the RBAC system.
// Values are wire-exact and stored as-is in the users table.
type UserRole string

const (
	RoleSuperAdmin       UserRole = "super_admin"
	RoleSchoolAdmin      UserRole = "school_admin"
	RoleAdmissionOfficer UserRole = "admission_officer"
	RoleTeacher          UserRole = "teacher"
	RoleFinanceManager   UserRole = "finance_manager"
	RoleInventoryManager UserRole = "inventory_manager"
	RoleParent           UserRole = "parent"
	RoleStudent          UserRole = "student"
)

// StaffRoles lists every role allowed to operate on the admission pipeline.
var StaffRoles = []UserRole{
	RoleSuperAdmin,
	RoleSchoolAdmin,
	RoleAdmissionOfficer,
}

// AdminRoles lists roles allowed to manage users and academic setup.
var AdminRoles = []UserRole{
	RoleSuperAdmin,
	RoleSchoolAdmin,
}

// User represents an application user stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	FullName     string    `db:"full_name" json:"full_name"`
	Mobile       string    `db:"mobile" json:"mobile,omitempty"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role      *UserRole
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
