package controller

import (
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/service"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginProfile(t *testing.T) {
	s := newTestServer(t)

	rec, res := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Lin", "email": "Lin@Example.com", "password": "secret1", "role": "teacher",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode[model.User](t, res.Data)
	assert.Equal(t, "lin@example.com", user.Email)
	assert.Equal(t, model.Teacher, user.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	rec, _ = s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Lin", "email": "lin@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "lin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, res = s.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "lin@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[service.LoginResponse](t, res.Data)
	require.NotEmpty(t, login.Token)

	rec, res = s.do(t, http.MethodGet, "/api/profile", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, decode[model.User](t, res.Data).ID)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": "root", "email": "root@example.com", "password": "secret1", "role": "admin",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileRequiresToken(t *testing.T) {
	s := newTestServer(t)
	rec, _ := s.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodGet, "/api/profile", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
