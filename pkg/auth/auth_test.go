package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/config"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/database"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:       "test-secret-0123456789",
		TokenTTL:        time.Hour,
		APIMasterSecret: "master",
		AdminID:         1,
		AdminPassword:   "admin123",
		AdminName:       "Site Manager",
		AdminSite:       "hilton",
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("secret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestToken_RoundTrip(t *testing.T) {
	a := New(testConfig())
	token, err := a.CreateToken(models.WorkerProfile{ID: 7, SiteID: "hilton", Role: models.RoleShiftManager})
	require.NoError(t, err)

	claims, err := a.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.WorkerID)
	assert.Equal(t, "hilton", claims.SiteID)
	assert.Equal(t, models.RoleShiftManager, claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestToken_Rejected(t *testing.T) {
	a := New(testConfig())

	expired := New(testConfig())
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.CreateToken(models.WorkerProfile{ID: 7, SiteID: "hilton", Role: models.RoleEmployee})
	require.NoError(t, err)
	_, err = a.VerifyToken(old)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	other := testConfig()
	other.JWTSecret = "another-secret-0123456789"
	forged, err := New(other).CreateToken(models.WorkerProfile{ID: 7})
	require.NoError(t, err)
	_, err = a.VerifyToken(forged)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{WorkerID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = a.VerifyToken(unsigned)
	assert.Error(t, err)

	_, err = a.VerifyToken("garbage")
	assert.Error(t, err)
}

func TestHMACKey(t *testing.T) {
	a := New(testConfig())
	key := a.GenerateHMACKey("hilton", "nightly.solver")

	site, name, err := a.VerifyHMACKey(key)
	require.NoError(t, err)
	assert.Equal(t, "hilton", site)
	assert.Equal(t, "nightly.solver", name)

	tampered := key[:len(key)-1] + "0"
	if key[len(key)-1] == '0' {
		tampered = key[:len(key)-1] + "1"
	}
	_, _, err = a.VerifyHMACKey(tampered)
	assert.True(t, errors.Is(err, ErrInvalidAPIKey))

	_, _, err = a.VerifyHMACKey("no-dot")
	assert.True(t, errors.Is(err, ErrInvalidAPIKey))

	noSite := a.GenerateHMACKey("", "solver")
	_, _, err = a.VerifyHMACKey(noSite)
	assert.True(t, errors.Is(err, ErrInvalidAPIKey))

	other := testConfig()
	other.APIMasterSecret = "other"
	_, _, err = New(other).VerifyHMACKey(key)
	assert.True(t, errors.Is(err, ErrInvalidAPIKey))
}

func TestEnsureManagerExists(t *testing.T) {
	ctx := context.Background()
	db, err := database.InitDB(config.DBConfig{Path: filepath.Join(t.TempDir(), "auth.db")}, zap.NewNop())
	require.NoError(t, err)
	workers := database.NewWorkerStore(db)

	require.NoError(t, EnsureManagerExists(ctx, workers, testConfig(), zap.NewNop()))
	require.NoError(t, EnsureManagerExists(ctx, workers, testConfig(), zap.NewNop()))

	w, err := workers.Worker(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoleManagement, w.Role)
	assert.Equal(t, "hilton", w.SiteID)
	assert.True(t, CheckPasswordHash("admin123", w.PasswordHash))

	disabled := testConfig()
	disabled.AdminID = 2
	disabled.AdminPassword = ""
	require.NoError(t, EnsureManagerExists(ctx, workers, disabled, zap.NewNop()))
	_, err = workers.Worker(ctx, 2)
	assert.True(t, errors.Is(err, database.ErrWorkerNotFound))
}
