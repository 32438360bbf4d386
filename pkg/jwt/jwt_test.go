package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/stock-ledger-api/pkg/jwt"
)

const secret = "test-secret"

func TestGenerateAndParse_ConTiendas(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "gerente", []string{"s1", "s2"}, "test", 60)
	require.NoError(t, err)

	userID, role, stores, err := pkgjwt.Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)
	assert.Equal(t, "gerente", role)
	assert.Equal(t, []string{"s1", "s2"}, stores)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "admin", nil, "test", -1)
	require.NoError(t, err)
	_, _, _, err = pkgjwt.Parse(secret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "u1", "admin", nil, "test", 60)
	require.NoError(t, err)
	_, _, _, err = pkgjwt.Parse("otro-secret", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "u1", "admin", nil, "test", 60)
	assert.Error(t, err)
}
