// Package controllers adapts HTTP requests to the marketplace services.
package controllers

import (
	"errors"
	"net/http"

	"github.com/plantnet/plantnet/pkg/bind"
	"github.com/plantnet/plantnet/pkg/ctx"
	"github.com/plantnet/plantnet/pkg/middleware"
	"github.com/plantnet/plantnet/pkg/validate"
)

// Home answers the root path. Load balancers use it as a liveness probe.
func Home(c *ctx.Context) {
	c.String(http.StatusOK, "Hello from plantNet Server..")
}

// caller returns the authenticated email. Routes using it sit behind
// middleware.Authenticate, so a miss is answered with 401.
func caller(c *ctx.Context) (string, bool) {
	email, ok := middleware.EmailFromCtx(c.Context())
	if !ok {
		c.Error(http.StatusUnauthorized, "unauthorized access")
	}
	return email, ok
}

// bindOptional decodes a JSON body that the client may leave out.
func bindOptional(c *ctx.Context, dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	switch {
	case errors.Is(err, bind.ErrEmptyBody):
		return true
	case err != nil:
		c.Error(http.StatusBadRequest, err.Error())
		return false
	case validate.HasErrors(errs):
		c.ValidationError(errs)
		return false
	}
	return true
}
