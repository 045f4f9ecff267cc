package dto

// CreateUserRequest adds a staff or parent account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=super_admin school_admin admission_officer teacher finance_manager inventory_manager parent student"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Mobile   string `json:"mobile" validate:"omitempty,min=10,max=15"`
}

// UpdateUserRequest edits profile fields; absent fields are untouched.
type UpdateUserRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Mobile   *string `json:"mobile" validate:"omitempty,min=10,max=15"`
	Active   *bool   `json:"active"`
}

// ResetPasswordRequest sets a new password for a user (admin action).
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePasswordRequest lets a user rotate their own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ListUsersQuery binds admin list filters from the query string.
type ListUsersQuery struct {
	Role      string `form:"role"`
	Active    *bool  `form:"active"`
	Search    string `form:"search"`
	Page      int    `form:"page"`
	PageSize  int    `form:"page_size"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}
