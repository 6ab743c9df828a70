package controllers

import (
	"net/http"

	"github.com/plantnet/plantnet/pkg/auth"
	"github.com/plantnet/plantnet/pkg/ctx"
)

type success struct {
	Success bool `json:"success"`
}

type AuthController struct {
	issuer  *auth.TokenIssuer
	session ctx.SessionCookie
}

// NewAuthController issues credentials into a cookie. secure selects the
// cross-site cookie attributes used in production.
func NewAuthController(issuer *auth.TokenIssuer, secure bool) *AuthController {
	return &AuthController{
		issuer:  issuer,
		session: ctx.SessionCookie{Name: auth.CookieName, Secure: secure},
	}
}

// IssueToken handles POST /jwt.
func (a *AuthController) IssueToken(c *ctx.Context) {
	var id auth.Identity
	if !c.BindJSON(&id) {
		return
	}

	token, err := a.issuer.Issue(id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.SetSession(a.session, token, a.issuer.TTL())
	c.JSON(http.StatusOK, success{Success: true})
}

// Logout handles GET /logout.
func (a *AuthController) Logout(c *ctx.Context) {
	c.ClearSession(a.session)
	c.JSON(http.StatusOK, success{Success: true})
}
