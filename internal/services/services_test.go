package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	intdb "travelbot/internal/db"
	"travelbot/internal/domain"
	"travelbot/internal/intent"
	"travelbot/internal/repositories"
	"travelbot/internal/utils"
)

var testSession = domain.Session{Name: "Asha", Email: "asha@example.com"}

func init() {
	utils.SetLogger(zap.NewNop())
}

func newStore(t *testing.T) (repositories.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	return repositories.Store{DB: db, Dialect: intdb.MySQL}, mock
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type stubClassifier struct {
	intent string
	err    error
}

func (s stubClassifier) Predict(string) (intent.Prediction, error) {
	return intent.Prediction{Intent: s.intent, Confidence: 0.9}, s.err
}

func flightRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"airline", "date", "source", "destination", "dep", "duration", "stops", "info", "price", "arrival"}).
		AddRow("IndiGo", "2025-01-10", "Mumbai", "Delhi", "06:00", "2h 10m", "non-stop", "No info", 5400.0, "08:10")
}

func emptyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"a"})
}
