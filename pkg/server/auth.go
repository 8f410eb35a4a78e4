package server

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"atelier/pkg/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "atelier-sample"

var ErrInvalidCredentials = errors.New("invalid email or password")

// Claims represents the JWT claims
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Auth checks the single admin account and issues HS256 tokens
type Auth struct {
	admin  models.User
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuth hashes password with bcrypt unless passwordHash is already given
func NewAuth(admin models.User, password, passwordHash, secret string, ttl time.Duration) (*Auth, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required, set server.jwt_secret or ATELIER_SERVER_JWT_SECRET")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	hash := []byte(passwordHash)
	if len(hash) == 0 {
		if password == "" {
			return nil, errors.New("admin password or password hash is required")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hashing admin password: %w", err)
		}
	}
	return &Auth{admin: admin, hash: hash, secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Login returns a token for the admin when email and password match
func (a *Auth) Login(email, password string) (string, models.User, error) {
	if !strings.EqualFold(strings.TrimSpace(email), a.admin.Email) {
		return "", models.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return "", models.User{}, ErrInvalidCredentials
	}
	token, err := a.Issue(a.admin)
	if err != nil {
		return "", models.User{}, err
	}
	return token, a.admin, nil
}

// Issue signs a token for user
func (a *Auth) Issue(user models.User) (string, error) {
	now := a.now()
	claims := &Claims{
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// Verify validates a token and returns the user it was issued to
func (a *Auth) Verify(tokenString string) (models.User, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(a.now))
	if err != nil {
		return models.User{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return models.User{}, errors.New("invalid token claims")
	}
	return models.User{ID: claims.Subject, Name: claims.Name, Email: claims.Email, Role: claims.Role}, nil
}
