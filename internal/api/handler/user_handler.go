package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/user-management-api/internal/core/domain"
	"github.com/sirpyerre/user-management-api/internal/core/ports"
	"github.com/sirpyerre/user-management-api/internal/core/query"
)

// UserHandler serves the /users resource.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /users.
//
// @Summary      List users
// @Description  Filter by search and role, sort, then paginate.
// @Tags         users
// @Produce      json
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        pageSize   query     int     false  "Page size (max 100)"
// @Param        search     query     string  false  "Case-insensitive substring of name, email or role"
// @Param        role       query     string  false  "admin, user or moderator"
// @Param        sortBy     query     string  false  "name, email, role or createdAt"
// @Param        sortOrder  query     string  false  "asc or desc"
// @Success      200        {object}  Envelope{data=[]domain.User}
// @Failure      400        {object}  Envelope
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	var q listUsersQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	res, err := h.service.ListUsers(c.Request().Context(), ports.ListUsersInput{
		Page:      q.Page,
		PageSize:  q.PageSize,
		Search:    q.Search,
		Role:      domain.Role(q.Role),
		SortBy:    q.SortBy,
		SortOrder: query.ParseOrder(q.SortOrder),
	})
	if err != nil {
		return err
	}
	return Paged(c, res.Items, res.Page)
}

// Get handles GET /users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id (e.g. user_1)"
// @Success      200  {object}  Envelope{data=domain.User}
// @Failure      404  {object}  Envelope
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	u, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, u, "")
}

// Create handles POST /users.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "New user"
// @Success      201   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  Envelope
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	u, err := h.service.CreateUser(c.Request().Context(), ports.CreateUserInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return OK(c, http.StatusCreated, u, "User created successfully")
}

// Update handles PUT /users/:id. Only provided fields change.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change (at least one)"
// @Success      200   {object}  Envelope{data=domain.User}
// @Failure      400   {object}  Envelope
// @Failure      404   {object}  Envelope
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	patch := req.patch()
	if patch.Empty() {
		return &ValidationError{Details: []FieldError{{Field: "body", Message: "at least one field must be provided"}}}
	}

	u, err := h.service.UpdateUser(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, u, "User updated successfully")
}

// Delete handles DELETE /users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Param        id   path  string  true  "User id"
// @Success      204
// @Failure      404  {object}  Envelope
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Generate handles POST /users/generate.
//
// @Summary      Generate random users
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      generateUsersRequest  true  "How many (1..50)"
// @Success      201   {object}  Envelope{data=[]domain.User}
// @Failure      400   {object}  Envelope
// @Router       /users/generate [post]
func (h *UserHandler) Generate(c echo.Context) error {
	var req generateUsersRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	users, err := h.service.GenerateUsers(c.Request().Context(), req.Count)
	if err != nil {
		return err
	}
	return OK(c, http.StatusCreated, users, fmt.Sprintf("%d users generated successfully", len(users)))
}

// Stats handles GET /users/stats.
//
// @Summary      User counts by role
// @Tags         users
// @Produce      json
// @Success      200  {object}  Envelope{data=domain.UserStats}
// @Router       /users/stats [get]
func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.service.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, stats, "")
}

// UpdateProfile handles POST /users/updateProfile.
//
// @Summary      Transform a demo profile form
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      updateProfileRequest  true  "Profile form"
// @Success      200   {object}  Envelope{data=domain.ProfileResult}
// @Failure      400   {object}  Envelope
// @Router       /users/updateProfile [post]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	res, err := h.service.UpdateProfile(c.Request().Context(), domain.ProfileUpdate{
		PlaceHolder:  req.PlaceHolder,
		DummyData:    req.DummyData,
		NumericValue: *req.NumericValue,
		FirstString:  req.ObjectValue.FirstString,
		SecondString: req.ObjectValue.SecondString,
	})
	if err != nil {
		return err
	}
	return OK(c, http.StatusOK, res, "Profile updated successfully")
}
