package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/poolforyou/poolforyou-api/internal/service"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrEmailNotVerified, http.StatusForbidden},
		{fmt.Errorf("%w: unknown operation", service.ErrForbidden), http.StatusForbidden},
		{service.ErrDuplicateEmail, http.StatusBadRequest},
		{service.ErrInvalidToken, http.StatusBadRequest},
		{service.ErrAlreadyActivated, http.StatusBadRequest},
		{service.ErrUserNotFound, http.StatusNotFound},
		{service.ErrReportNotFound, http.StatusNotFound},
		{&service.ValidationError{Fields: map[string]string{"ph_level": "required"}}, http.StatusBadRequest},
		{fmt.Errorf("save photo: %w: %w", service.ErrStorage, errors.New("disk full")), http.StatusInternalServerError},
		{echo.NewHTTPError(http.StatusRequestEntityTooLarge, "too big"), http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, _ := statusOf(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestErrorHandlerHidesInternalDetail(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(fmt.Errorf("load user: %w: %w", service.ErrStorage, errors.New("dial tcp 10.0.0.3:3306")), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
}

func TestErrorHandlerValidationFields(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/work-reports", nil), rec)

	ErrorHandler(&service.ValidationError{Fields: map[string]string{"location": "required"}}, c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"location":"required"}}`, rec.Body.String())
}
