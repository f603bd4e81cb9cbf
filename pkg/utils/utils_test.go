package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, claims, err := GenerateToken("secret", time.Hour, userID, "ada@example.com", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, userID.String(), parsed.UserID)
	assert.Equal(t, "admin", parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)

	expired, _, err := GenerateToken("secret", -time.Minute, userID, "ada@example.com", "admin")
	require.NoError(t, err)
	_, err = ParseToken(expired, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, _, err = GenerateToken("", time.Hour, userID, "ada@example.com", "admin")
	assert.Error(t, err)
}

func TestParseTokenRejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID: uuid.NewString(),
		Role:   "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc.def")
	assert.True(t, ok)
	assert.Equal(t, "abc.def", tok)

	tok, ok = BearerToken("bearer xyz")
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)

	for _, header := range []string{"", "Bearer", "Bearer ", "Token abc"} {
		_, ok := BearerToken(header)
		assert.False(t, ok, header)
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPasswordHash("hunter22", hash))
	assert.False(t, CheckPasswordHash("hunter23", hash))
}

func TestUserContext(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)

	id := uuid.New()
	ctx := SetUserContext(context.Background(), id, "customer", "ada@example.com")

	got, ok := GetUserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)

	role, _ := GetRoleFromContext(ctx)
	email, _ := GetEmailFromContext(ctx)
	assert.Equal(t, "customer", role)
	assert.Equal(t, "ada@example.com", email)
}

func TestValidateStructUsesJSONNames(t *testing.T) {
	type payload struct {
		SerialNumber string   `json:"serialNumber" validate:"required"`
		Latitude     *float64 `json:"latitude" validate:"required,latitude"`
		Status       string   `json:"status" validate:"omitempty,oneof=idle charging"`
	}

	bad := 120.0
	errs := ValidateStruct(payload{Latitude: &bad, Status: "flying"})

	assert.Equal(t, "This field is required", errs["serialNumber"])
	assert.Equal(t, "Must be a valid latitude", errs["latitude"])
	assert.Equal(t, "Must be one of: idle, charging", errs["status"])
	assert.Equal(t,
		"latitude: Must be a valid latitude; serialNumber: This field is required; status: Must be one of: idle, charging",
		FormatValidationErrors(errs))

	ok := 45.0
	assert.Empty(t, ValidateStruct(payload{SerialNumber: "SN-1", Latitude: &ok}))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 3, ParseInt("3", 1))
	assert.Equal(t, 1, ParseInt("0", 1))
	assert.Equal(t, 1, ParseInt("x", 1))
	assert.Equal(t, 2.5, ParseFloat("2.5", 0))
	assert.Equal(t, 0.0, ParseFloat("-1", 0))
	assert.Equal(t, 0.0, ParseFloat("", 0))
}

func TestResponseEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	ResponseCreated(rec, "Drone created successfully", map[string]string{"id": "d1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Drone created successfully", body["message"])
	assert.NotContains(t, body, "errors")

	rec = httptest.NewRecorder()
	ResponseConflict(rec, "Drone is not available")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `"success":false`))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, splitList(" kafka-1:9092, ,kafka-2:9092 "))
	assert.Nil(t, splitList(""))
}
