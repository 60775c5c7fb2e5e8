package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AlonCohen-work/Final-Year-Project/pkg/config"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/database"
	"github.com/AlonCohen-work/Final-Year-Project/pkg/models"
)

var jwtAlgorithm = jwt.SigningMethodHS256

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidAPIKey = errors.New("invalid api key")
)

// Claims represents the JWT claims of a worker session.
type Claims struct {
	WorkerID int         `json:"worker_id"`
	SiteID   string      `json:"site"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator signs and verifies worker sessions and solver API keys.
type Authenticator struct {
	jwtSecret    []byte
	tokenTTL     time.Duration
	masterSecret []byte
	now          func() time.Time
}

// New creates an authenticator from the auth configuration.
func New(cfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		jwtSecret:    []byte(cfg.JWTSecret),
		tokenTTL:     cfg.TokenTTL,
		masterSecret: []byte(cfg.APIMasterSecret),
		now:          time.Now,
	}
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CreateToken creates a session token for the worker.
func (a *Authenticator) CreateToken(p models.WorkerProfile) (string, error) {
	now := a.now()
	claims := &Claims{
		WorkerID: p.ID,
		SiteID:   p.SiteID,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(p.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwtAlgorithm, claims)
	return token.SignedString(a.jwtSecret)
}

// VerifyToken verifies a session token and returns its claims.
func (a *Authenticator) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtAlgorithm {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateHMACKey creates an API key that lets its holder publish for siteID. The
// key is "<site>:<name>.<hex hmac-sha256>".
func (a *Authenticator) GenerateHMACKey(siteID, name string) string {
	subject := siteID + ":" + name
	return subject + "." + a.sign(subject)
}

// VerifyHMACKey validates an API key and returns the site and name it was issued for.
func (a *Authenticator) VerifyHMACKey(key string) (siteID, name string, err error) {
	dot := strings.LastIndex(key, ".")
	if dot <= 0 {
		return "", "", fmt.Errorf("%w: bad format", ErrInvalidAPIKey)
	}
	subject, provided := key[:dot], key[dot+1:]

	if !hmac.Equal([]byte(provided), []byte(a.sign(subject))) {
		return "", "", fmt.Errorf("%w: bad signature", ErrInvalidAPIKey)
	}

	siteID, name, ok := strings.Cut(subject, ":")
	if !ok || siteID == "" {
		return "", "", fmt.Errorf("%w: no site", ErrInvalidAPIKey)
	}
	return siteID, name, nil
}

func (a *Authenticator) sign(subject string) string {
	h := hmac.New(sha256.New, a.masterSecret)
	h.Write([]byte(subject))
	return hex.EncodeToString(h.Sum(nil))
}

// EnsureManagerExists creates the configured bootstrap manager when no worker has its
// id yet. Nothing happens when no admin password or site is configured.
func EnsureManagerExists(ctx context.Context, workers *database.WorkerStore, cfg config.AuthConfig, logger *zap.Logger) error {
	if cfg.AdminPassword == "" || cfg.AdminSite == "" {
		return nil
	}

	hash, err := HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	created, err := workers.CreateWorker(ctx, &database.Worker{
		ID:           cfg.AdminID,
		Name:         cfg.AdminName,
		SiteID:       cfg.AdminSite,
		Role:         models.RoleManagement,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	if created {
		logger.Info("bootstrap manager created", zap.Int("id", cfg.AdminID), zap.String("site", cfg.AdminSite))
	}
	return nil
}
