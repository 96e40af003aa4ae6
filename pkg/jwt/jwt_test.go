package jwt

import (
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-unit-tests"

func TestGenerateAndParse(t *testing.T) {
	tok, err := Generate(testSecret, "ana.bodega", "bodeguero", "inventario-ledger-test", 60)
	require.NoError(t, err)

	actor, role, err := Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "ana.bodega", actor)
	assert.Equal(t, "bodeguero", role)
}

func TestParse_Rechazos(t *testing.T) {
	valid, err := Generate(testSecret, "ana", "admin", "test", 60)
	require.NoError(t, err)
	expired, err := Generate(testSecret, "ana", "admin", "test", -1)
	require.NoError(t, err)

	cases := []struct {
		name   string
		secret string
		token  string
	}{
		{"secret incorrecto", "otro-secret", valid},
		{"expirado", testSecret, expired},
		{"malformado", testSecret, "token.invalido.aqui"},
		{"secret vacío", "", valid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.secret, tc.token)
			assert.Error(t, err)
		})
	}
}

func TestParse_SubjectComoActor(t *testing.T) {
	claims := gojwt.RegisteredClaims{Subject: "legacy-user"}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	actor, role, err := Parse(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, "legacy-user", actor)
	assert.Empty(t, role)
}

func TestParse_SinActorNiSubject(t *testing.T) {
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.RegisteredClaims{}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, _, err = Parse(testSecret, tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := Generate("", "ana", "admin", "test", 60)
	assert.Error(t, err)
}
