package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/tienda-erp-api/internal/application/auth"
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/application/fakes"
	"github.com/jhoicas/tienda-erp-api/internal/domain"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
	"github.com/jhoicas/tienda-erp-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth(s *fakes.Store) *auth.AuthUseCase {
	return auth.NewAuthUseCase(fakes.NewUserRepo(s), fakes.NewAccessRequestRepo(s),
		auth.JWTConfig{Secret: secret, ExpMinutes: 60, Issuer: "tienda-erp"}, nil)
}

func seedUser(t *testing.T, s *fakes.Store, status string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	require.NoError(t, err)
	s.AddUser(&entity.User{
		ID: "u1", Email: "ana@tienda.com", PasswordHash: string(hash),
		Roles: []string{entity.RoleAdmin, entity.RoleVendedor}, Status: status,
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Login
// ──────────────────────────────────────────────────────────────────────────────

func TestLogin_TokenLlevaRoles(t *testing.T) {
	s := fakes.NewStore()
	seedUser(t, s, "active")

	out, err := newAuth(s).Login(context.Background(), dto.LoginRequest{Email: " ANA@tienda.com ", Password: "secreto123"})
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "tienda-erp", claims.Issuer)
	assert.ElementsMatch(t, []string{"admin", "vendedor"}, claims.Roles)
	assert.Equal(t, "ana@tienda.com", out.User.Email)
}

func TestLogin_Errores(t *testing.T) {
	s := fakes.NewStore()
	seedUser(t, s, "active")
	uc := newAuth(s)

	_, err := uc.Login(context.Background(), dto.LoginRequest{Email: "nadie@tienda.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.Login(context.Background(), dto.LoginRequest{Email: "ana@tienda.com", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioSuspendido(t *testing.T) {
	s := fakes.NewStore()
	seedUser(t, s, "suspended")

	_, err := newAuth(s).Login(context.Background(), dto.LoginRequest{Email: "ana@tienda.com", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta y solicitudes de acceso
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterUser_HasheaYAsignaVendedor(t *testing.T) {
	s := fakes.NewStore()
	uc := newAuth(s)

	out, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "Luis@Tienda.com", Password: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, []string{entity.RoleVendedor}, out.Roles)
	assert.Equal(t, "luis@tienda.com", out.Name, "sin nombre se usa el email")

	u := s.User(out.ID)
	require.NotNil(t, u)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("12345678")))

	_, err = uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "luis@tienda.com", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRequestAccess(t *testing.T) {
	s := fakes.NewStore()
	seedUser(t, s, "active")
	uc := newAuth(s)
	ctx := context.Background()

	_, err := uc.RequestAccess(ctx, dto.AccessRequestCreate{Email: "ana@tienda.com", Name: "Ana", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists, "un usuario existente no puede pedir acceso")

	out, err := uc.RequestAccess(ctx, dto.AccessRequestCreate{Email: "nuevo@tienda.com", Name: "Nuevo", Password: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, entity.AccessRequestPending, out.Status)

	_, err = uc.RequestAccess(ctx, dto.AccessRequestCreate{Email: "nuevo@tienda.com", Name: "Nuevo", Password: "12345678"})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "una sola solicitud pendiente por email")
}

func TestMe(t *testing.T) {
	s := fakes.NewStore()
	seedUser(t, s, "active")
	uc := newAuth(s)

	out, err := uc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "ana@tienda.com", out.Email)

	_, err = uc.Me(context.Background(), "u9")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
