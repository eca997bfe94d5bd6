package handler

import "github.com/sirpyerre/user-management-api/internal/core/domain"

// --- User requests ---

type listUsersQuery struct {
	Page      int    `query:"page"      validate:"omitempty,min=1"`
	PageSize  int    `query:"pageSize"  validate:"omitempty,min=1,max=100"`
	Search    string `query:"search"`
	Role      string `query:"role"      validate:"omitempty,oneof=admin user moderator"`
	SortBy    string `query:"sortBy"    validate:"omitempty,oneof=name email role createdAt"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type createUserRequest struct {
	Name  string `json:"name"  validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role"  validate:"omitempty,oneof=admin user moderator"`
}

type updateUserRequest struct {
	Name  *string `json:"name"  validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role"  validate:"omitempty,oneof=admin user moderator"`
}

func (r updateUserRequest) patch() domain.UserPatch {
	p := domain.UserPatch{Name: r.Name, Email: r.Email}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}

type generateUsersRequest struct {
	Count int `json:"count" validate:"required,min=1,max=50"`
}

type objectValueRequest struct {
	FirstString  string `json:"firstString"  validate:"required"`
	SecondString string `json:"secondString" validate:"required"`
}

type updateProfileRequest struct {
	PlaceHolder  string              `json:"placeHolder"  validate:"required"`
	DummyData    []string            `json:"dummyData"    validate:"required"`
	NumericValue *float64            `json:"numericValue" validate:"required"`
	ObjectValue  *objectValueRequest `json:"objectValue"  validate:"required"`
}

type listBooksQuery struct {
	Page      int    `query:"page"      validate:"omitempty,min=1"`
	PageSize  int    `query:"pageSize"  validate:"omitempty,min=1,max=100"`
	SearchKey string `query:"searchKey"`
	SortBy    string `query:"sortBy"    validate:"omitempty,oneof=bookName author price stock category isbn"`
	SortOrder string `query:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// --- Auth requests ---

type loginRequest struct {
	UserName       string `json:"userName"       validate:"required,min=3,max=50"`
	Password       string `json:"password"       validate:"required,max=100"`
	ExpectedResult int    `json:"expectedResult" validate:"required,min=200,max=599"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// --- Responses (documentation shapes) ---

type validateResponse struct {
	Valid bool             `json:"valid"`
	User  domain.Principal `json:"user"`
}
