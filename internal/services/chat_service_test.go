package services

import (
	"context"
	"database/sql/driver"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"travelbot/internal/domain"
	"travelbot/internal/intent"
	"travelbot/internal/ner"
	"travelbot/internal/repositories"
)

func newChat(store repositories.Store, intentName string) ChatService {
	return ChatService{
		Classifier: stubClassifier{intent: intentName},
		Tagger:     ner.NewGazetteerTagger(ner.DefaultCatalog),
		Catalog:    ner.DefaultCatalog,
		Travel:     repositories.TravelRepository{Store: store},
		QueryLog:   repositories.QueryLogRepository{Store: store},
		Now:        fixedClock(time.Date(2025, 1, 9, 10, 0, 0, 0, time.Local)),
	}
}

func TestAnalyzeFlightQuery(t *testing.T) {
	store, mock := newStore(t)
	query := "Book a flight from Mumbai to Delhi tomorrow please"
	mock.ExpectExec("INSERT INTO user_queries").
		WithArgs("asha@example.com", query, "flight_booking", "Mumbai, Delhi", "2025-01-10", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM flight WHERE LOWER\(Source\)=LOWER\(\?\) AND LOWER\(Destination\)=LOWER\(\?\) AND Date_of_Journey LIKE \?`).
		WithArgs("Mumbai", "Delhi", "2025-01%", 50).
		WillReturnRows(flightRows())

	a, err := newChat(store, "flight_booking").Analyze(context.Background(), testSession, query)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Service != "Book a flight" || a.Category != intent.CategoryFlight {
		t.Fatalf("unexpected mapping: %s %s", a.Service, a.Category)
	}
	if diff := cmp.Diff([]string{"Mumbai", "Delhi"}, a.Locations); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2025-01-10 (Full Date)"}, a.Dates); diff != "" {
		t.Fatalf("dates mismatch (-want +got):\n%s", diff)
	}
	if len(a.Results.Flights) != 1 || a.Results.Count() != 1 {
		t.Fatalf("expected one flight, got %+v", a.Results)
	}
	for _, want := range []string{
		"Thank you! You are interested in **Book a flight** (Intent: flight_booking).",
		"**Mumbai**, **Delhi**",
		"**2025-01-10** (Full Date)",
		"I found 1 matching record(s).",
	} {
		if !strings.Contains(a.Reply, want) {
			t.Fatalf("reply %q does not contain %q", a.Reply, want)
		}
	}
	if a.Summary.ExtractedLocations != "Mumbai, Delhi" || a.Summary.MappedService != "Book a flight" {
		t.Fatalf("unexpected summary: %+v", a.Summary)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAnalyzeRejectsShortQuery(t *testing.T) {
	store, _ := newStore(t)
	_, err := newChat(store, "flight_booking").Analyze(context.Background(), testSession, "flight to Delhi")
	if !domain.IsValidation(err) || err.Error() != "Please enter a more detailed query (at least 4 words)." {
		t.Fatalf("expected short query error, got %v", err)
	}
}

func TestAnalyzeUnknownIntentAsksForMore(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectExec("INSERT INTO user_queries").WillReturnResult(sqlmock.NewResult(1, 1))

	a, err := newChat(store, "small_talk").Analyze(context.Background(), testSession, "how are you doing today")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Service != intent.UnknownService {
		t.Fatalf("service = %q", a.Service)
	}
	if !strings.Contains(a.Reply, "No valid dates were identified.") ||
		!strings.HasSuffix(a.Reply, "Sorry, I couldn't find enough information to answer your query.") {
		t.Fatalf("unexpected reply: %q", a.Reply)
	}
}

func TestAnalyzeCarRentalMiss(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectExec("INSERT INTO user_queries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM car_rental WHERE LOWER\(City\)=LOWER\(\?\)`).
		WithArgs("Pune", "2025-01-10", "%suv%", 50).
		WillReturnRows(emptyRows())

	a, err := newChat(store, "car_rental").Analyze(context.Background(), testSession, "rent an SUV in Pune tomorrow")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.HasSuffix(a.Reply, "No car rentals found in Pune.") {
		t.Fatalf("unexpected reply: %q", a.Reply)
	}
	if a.Classified == "" {
		t.Fatalf("expected classified entities")
	}
}

func TestExamples(t *testing.T) {
	ex, err := ChatService{}.Examples("car rental")
	if err != nil || len(ex) != 5 {
		t.Fatalf("Examples = %v, %v", ex, err)
	}
	if _, err := (ChatService{}).Examples("cruise"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAnalyzeHotelCheckInWindow(t *testing.T) {
	cases := []struct {
		name  string
		query string
		args  []driver.Value
	}{
		{"week range", "find a hotel in Goa next week", []driver.Value{"Goa", "2025-01-13", "2025-01-19", 50}},
		{"reversed dates", "find a hotel in Goa from 2025-02-20 until 2025-02-12", []driver.Value{"Goa", "2025-02-12", "2025-02-20", 50}},
		{"single day", "find a hotel in Goa tomorrow", []driver.Value{"Goa", 50}},
	}
	for _, tc := range cases {
		store, mock := newStore(t)
		mock.ExpectExec("INSERT INTO user_queries").WillReturnResult(sqlmock.NewResult(1, 1))
		pattern := `FROM hotel WHERE LOWER\(City\)=LOWER\(\?\) AND Check_In_Date BETWEEN \? AND \? LIMIT \?`
		if len(tc.args) == 2 {
			pattern = `FROM hotel WHERE LOWER\(City\)=LOWER\(\?\) LIMIT \?`
		}
		mock.ExpectQuery(pattern).WithArgs(tc.args...).WillReturnRows(emptyRows())

		a, err := newChat(store, "hotel_booking").Analyze(context.Background(), testSession, tc.query)
		if err != nil {
			t.Fatalf("%s: Analyze: %v", tc.name, err)
		}
		if !strings.HasSuffix(a.Reply, "No hotels found for the given criteria.") {
			t.Fatalf("%s: unexpected reply: %q", tc.name, a.Reply)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("%s: unmet expectations: %v", tc.name, err)
		}
	}
}

func TestAnalyzeAdvisoryMiss(t *testing.T) {
	store, mock := newStore(t)
	mock.ExpectExec("INSERT INTO user_queries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM travel_advisory WHERE LOWER\(City\)=LOWER\(\?\)`).
		WithArgs("Jaipur", 50).
		WillReturnRows(emptyRows())

	a, err := newChat(store, "travel_advisory").Analyze(context.Background(), testSession, "any travel advisory for Jaipur")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if a.Category != intent.CategoryAdvisory {
		t.Fatalf("category = %s", a.Category)
	}
	if !strings.HasSuffix(a.Reply, "No advisories found for the given location.") {
		t.Fatalf("unexpected reply: %q", a.Reply)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
