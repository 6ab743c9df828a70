package controllers

import (
	"net/http"

	"github.com/plantnet/plantnet/app/services"
	"github.com/plantnet/plantnet/pkg/ctx"
)

type UserController struct {
	users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{users: users}
}

// Register handles POST /users/{email}.
func (u *UserController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !bindOptional(c, &in) {
		return
	}

	user, _, err := u.users.Register(c.Context(), c.Param("email"), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// RequestUpgrade handles PATCH /users/{email}.
func (u *UserController) RequestUpgrade(c *ctx.Context) {
	res, err := u.users.RequestUpgrade(c.Context(), c.Param("email"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Index handles GET /all-users/{email}.
func (u *UserController) Index(c *ctx.Context) {
	users, err := u.users.ListExcept(c.Context(), c.Param("email"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, users)
}

type grantRoleInput struct {
	Role string `json:"role" validate:"required"`
}

// GrantRole handles PATCH /user/role/{email}.
func (u *UserController) GrantRole(c *ctx.Context) {
	var in grantRoleInput
	if !c.BindJSON(&in) {
		return
	}

	res, err := u.users.GrantRole(c.Context(), c.Param("email"), in.Role)
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Role handles GET /users/role/{email}.
func (u *UserController) Role(c *ctx.Context) {
	v, err := u.users.GetRole(c.Context(), c.Param("email"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, v)
}
