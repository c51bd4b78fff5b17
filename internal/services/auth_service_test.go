package services

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"travelbot/internal/domain"
	"travelbot/internal/repositories"
)

var authNow = time.Date(2025, 1, 9, 10, 0, 0, 0, time.UTC)

func newAuth(store repositories.Store) AuthService {
	return AuthService{
		Users:  repositories.UserRepository{Store: store},
		Secret: []byte("test-secret"),
		TTL:    time.Hour,
		Now:    fixedClock(authNow),
	}
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"})
}

func TestSignupCreatesUserAndToken(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectQuery("FROM users WHERE email").WithArgs("asha@example.com").WillReturnRows(userRows())
	mock.ExpectExec("INSERT INTO users").
		WithArgs("Asha", "asha@example.com", "", authNow.Unix()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	svc := newAuth(store)
	res, err := svc.Signup(context.Background(), SignupInput{Name: " Asha ", Email: "Asha@Example.com"})
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if res.User.ID != 7 || res.Message != "Account created for Asha. You can now log in." {
		t.Fatalf("unexpected result: %+v", res)
	}
	sess, err := svc.ParseToken(res.Token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if sess != testSession {
		t.Fatalf("session = %+v", sess)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSignupDuplicate(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectQuery("FROM users WHERE email").
		WillReturnRows(userRows().AddRow(1, "Asha", "asha@example.com", "", authNow.Unix()))

	_, err := newAuth(store).Signup(context.Background(), SignupInput{Name: "Asha", Email: "asha@example.com"})
	if !domain.IsConflict(err) || err.Error() != "User already exists. Please login instead." {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	store, mock := newStore(t)
	mock.ExpectQuery("FROM users WHERE email").WithArgs("asha@example.com").
		WillReturnRows(userRows().AddRow(1, "Asha", "asha@example.com", string(hash), authNow.Unix()))
	mock.ExpectQuery("FROM users WHERE email").WithArgs("asha@example.com").
		WillReturnRows(userRows().AddRow(1, "Asha", "asha@example.com", string(hash), authNow.Unix()))
	mock.ExpectQuery("FROM users WHERE email").WithArgs("ravi@example.com").WillReturnRows(userRows())
	mock.MatchExpectationsInOrder(true)

	svc := newAuth(store)
	res, err := svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "s3cret"})
	if err != nil || res.Message != "Welcome back, Asha!" {
		t.Fatalf("Login = %+v, %v", res, err)
	}
	if !res.ExpiresAt.Equal(authNow.Add(time.Hour)) {
		t.Fatalf("expires at %v", res.ExpiresAt)
	}

	_, err = svc.Login(context.Background(), LoginInput{Email: "asha@example.com", Password: "wrong"})
	if !domain.IsValidation(err) {
		t.Fatalf("expected bad password, got %v", err)
	}
	_, err = svc.Login(context.Background(), LoginInput{Email: "ravi@example.com"})
	if !domain.IsNotFound(err) || err.Error() != "No user found. Please sign up." {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	svc := AuthService{Secret: []byte("a"), Now: fixedClock(authNow)}
	token, err := svc.IssueToken(testSession, authNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	later := svc
	later.Now = fixedClock(authNow.Add(time.Hour))
	if _, err := later.ParseToken(token); !domain.IsValidation(err) {
		t.Fatalf("expected expired token error, got %v", err)
	}

	other := svc
	other.Secret = []byte("b")
	if _, err := other.ParseToken(token); !domain.IsValidation(err) {
		t.Fatalf("expected signature error, got %v", err)
	}
}
