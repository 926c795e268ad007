package service

import (
	"english_edu_backend/internal/config"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/repository/inmem"
	"english_edu_backend/internal/util"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() *AuthService {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret-test-secret-test-secret", ExpireTime: time.Hour}}
	return NewAuthService(inmem.NewUserRepository(inmem.NewDB()), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthService()

	u, err := svc.Register(RegisterRequest{Name: "Mai", Email: " Mai@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.Learner, u.Role)
	assert.Equal(t, "mai@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.Password)

	_, err = svc.Register(RegisterRequest{Name: "Mai", Email: "mai@example.com", Password: "secret2"})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = svc.Login(LoginRequest{Email: "mai@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	res, err := svc.Login(LoginRequest{Email: "MAI@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	claims, err := util.ParseJWT(res.Token, svc.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, model.Learner, claims.Role)

	profile, err := svc.Profile(u.ID)
	require.NoError(t, err)
	assert.NotNil(t, profile.LastLogin)
}

func TestRegister_AdminNotAllowed(t *testing.T) {
	svc := newAuthService()
	_, err := svc.Register(RegisterRequest{Name: "Root", Email: "root@example.com", Password: "secret1", Role: model.Admin})
	assert.ErrorIs(t, err, util.ErrValidation)

	u, err := svc.Register(RegisterRequest{Name: "Tran", Email: "tran@example.com", Password: "secret1", Role: model.Teacher})
	require.NoError(t, err)
	assert.Equal(t, model.Teacher, u.Role)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newAuthService()
	_, err := svc.Login(LoginRequest{Email: "nobody@example.com", Password: "x"})
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	_, err = svc.Profile(42)
	assert.ErrorIs(t, err, util.ErrNotFound)
}
