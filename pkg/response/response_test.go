package response_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plantnet/plantnet/pkg/response"
)

type conflict struct{}

func (conflict) Error() string         { return "conflict: order 1 delivered" }
func (conflict) HTTPStatus() int       { return http.StatusConflict }
func (conflict) PublicMessage() string { return "Cannot cancel once the product has been delivered" }

func TestFailUsesStatusError(t *testing.T) {
	rec := httptest.NewRecorder()
	status := response.Fail(rec, fmt.Errorf("cancel: %w", conflict{}))

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"status":409,"message":"Cannot cancel once the product has been delivered"}`, rec.Body.String())
}

func TestFailHidesUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Fail(rec, errors.New("mongo: connection refused at 10.0.0.3"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationError(rec, map[string]string{"email": "The email field is required."})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.JSONEq(t, `{"status":422,"message":"Validation failed","errors":{"email":"The email field is required."}}`, rec.Body.String())
}
