package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/pkg/jwt"
)

const testSecret = "secreto-de-pruebas"

func newTestApp() *fiber.App {
	app := fiber.New()
	api := app.Group("/api", AuthMiddleware(testSecret))
	api.Get("/perfil", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": GetUserID(c), "role": GetRole(c)})
	})
	api.Get("/operacion", RequireRole(RoleOperator), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestAuthMiddleware_SinToken(t *testing.T) {
	app := newTestApp()
	assert.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "/api/perfil", ""))
}

func TestAuthMiddleware_TokenInvalido(t *testing.T) {
	app := newTestApp()
	assert.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "/api/perfil", "no-es-un-jwt"))
}

func TestAuthMiddleware_FormatoIncorrecto(t *testing.T) {
	app := newTestApp()
	token, err := jwt.Generate(testSecret, "user-1", RoleUser, "test", 5)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/perfil", nil)
	req.Header.Set("Authorization", "Token "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_TokenValido(t *testing.T) {
	app := newTestApp()
	token, err := jwt.Generate(testSecret, "user-1", RoleUser, "test", 5)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, doRequest(t, app, "/api/perfil", token))
}

func TestAuthMiddleware_FirmaDeOtroSecreto(t *testing.T) {
	app := newTestApp()
	token, err := jwt.Generate("otro-secreto", "user-1", RoleUser, "test", 5)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, doRequest(t, app, "/api/perfil", token))
}

func TestRequireRole_UsuarioNoAccedeRutaDeOperador(t *testing.T) {
	app := newTestApp()
	token, err := jwt.Generate(testSecret, "user-1", RoleUser, "test", 5)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, doRequest(t, app, "/api/operacion", token))
}

func TestRequireRole_OperadorAccede(t *testing.T) {
	app := newTestApp()
	token, err := jwt.Generate(testSecret, "op-1", RoleOperator, "test", 5)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, doRequest(t, app, "/api/operacion", token))
}

func TestRequireRole_AdminAccedeSiempre(t *testing.T) {
	app := newTestApp()
	token, err := jwt.Generate(testSecret, "admin-1", RoleAdmin, "test", 5)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, doRequest(t, app, "/api/operacion", token))
}
