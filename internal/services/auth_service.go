package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"travelbot/internal/domain"
	"travelbot/internal/domain/models"
	"travelbot/internal/repositories"
	"travelbot/internal/utils"
)

const (
	msgUserExists   = "User already exists. Please login instead."
	msgUserNotFound = "No user found. Please sign up."
	msgBadPassword  = "Incorrect email or password."
)

// AuthService registers users and issues the session tokens that carry
// the signed-in user between requests. Passwords are optional: a user
// created without one logs in by email alone.
type AuthService struct {
	Users     repositories.UserRepository
	Secret    []byte
	TTL       time.Duration
	RequestID string
	Now       func() time.Time
}

type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	User      models.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	Message   string      `json:"message"`
}

type sessionClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return 24 * time.Hour
}

func (s AuthService) Signup(ctx context.Context, in SignupInput) (AuthResult, error) {
	name := utils.NormalizeSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" {
		return AuthResult{}, domain.ValidationError{Field: "name", Msg: "name is required"}
	}
	if err := validateEmail(email); err != nil {
		return AuthResult{}, err
	}

	_, err := s.Users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return AuthResult{}, domain.ConflictError{Msg: msgUserExists}
	case !errors.Is(err, sql.ErrNoRows):
		return AuthResult{}, domain.InternalError{Msg: "failed to look up user", Err: err}
	}

	u := models.User{Name: name, Email: email, CreatedAt: s.now()}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return AuthResult{}, domain.InternalError{Msg: "failed to hash password", Err: err}
		}
		u.PasswordHash = string(hash)
	}
	u, err = s.Users.Create(ctx, u)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "failed to save user", Err: err}
	}
	utils.LogEvent(s.RequestID, "auth", "signup", fmt.Sprintf("user_id=%d", u.ID))

	res, err := s.issue(u)
	if err != nil {
		return AuthResult{}, err
	}
	res.Message = fmt.Sprintf("Account created for %s. You can now log in.", u.Name)
	return res, nil
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return AuthResult{}, domain.ValidationError{Field: "email", Msg: "email is required"}
	}
	u, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return AuthResult{}, domain.NotFoundError{Resource: "user", Msg: msgUserNotFound}
	}
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "failed to look up user", Err: err}
	}
	if u.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
			return AuthResult{}, domain.ValidationError{Field: "password", Msg: msgBadPassword}
		}
	}
	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%d", u.ID))

	res, err := s.issue(u)
	if err != nil {
		return AuthResult{}, err
	}
	res.Message = fmt.Sprintf("Welcome back, %s!", u.Name)
	return res, nil
}

func (s AuthService) issue(u models.User) (AuthResult, error) {
	exp := s.now().Add(s.ttl())
	token, err := s.IssueToken(domain.Session{Name: u.Name, Email: u.Email}, exp)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u, Token: token, ExpiresAt: exp}, nil
}

// IssueToken signs an HS256 token for the session.
func (s AuthService) IssueToken(sess domain.Session, expires time.Time) (string, error) {
	if len(s.Secret) == 0 {
		return "", domain.InternalError{Msg: "jwt secret is not configured"}
	}
	claims := sessionClaims{
		Name:  sess.Name,
		Email: sess.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.Email,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to sign token", Err: err}
	}
	return token, nil
}

// ParseToken validates a token and returns the session it carries.
func (s AuthService) ParseToken(raw string) (domain.Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.Session{}, domain.ValidationError{Field: "token", Msg: "invalid or expired session", Err: err}
	}
	if strings.TrimSpace(claims.Email) == "" {
		return domain.Session{}, domain.ValidationError{Field: "token", Msg: "session has no email"}
	}
	return domain.Session{Name: claims.Name, Email: claims.Email}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return domain.ValidationError{Field: "email", Msg: "email is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.ValidationError{Field: "email", Msg: "email is not valid", Err: err}
	}
	return nil
}
