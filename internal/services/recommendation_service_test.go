package services

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/go-cmp/cmp"

	"travelbot/internal/domain"
	"travelbot/internal/intent"
	"travelbot/internal/repositories"
)

func TestRecommendationsFromHistory(t *testing.T) {
	store, mock := newStore(t)
	loc := func(v string) *sqlmock.Rows { return sqlmock.NewRows([]string{"locations", "n"}).AddRow(v, 3) }
	none := sqlmock.NewRows([]string{"locations", "n"})

	mock.ExpectQuery("FROM user_queries").WithArgs("flight_booking", "flight_inquiry", "flight_cancellation", "flight_status", "flight_change", "asha@example.com").
		WillReturnRows(loc("Mumbai, Delhi"))
	mock.ExpectQuery("FROM user_queries").WithArgs("hotel_booking", "hotel_inquiry", "hotel_cancellation", "hotel_upgrade", "hotel_amenities", "asha@example.com").
		WillReturnRows(loc("Goa"))
	mock.ExpectQuery("FROM user_queries").WithArgs("car_rental", "car_inquiry", "car_cancellation", "car_extension", "car_price", "asha@example.com").
		WillReturnRows(none)
	mock.ExpectQuery("FROM user_queries").WithArgs("travel_advisory", "weather_advisory", "health_advisory", "political_unrest_advisory", "covid_restrictions", "asha@example.com").
		WillReturnRows(loc("Pune"))

	mock.ExpectQuery("FROM flight").WithArgs("Mumbai", "Delhi", 3).WillReturnRows(flightRows())
	mock.ExpectQuery("FROM hotel").WithArgs("Goa", 3).WillReturnRows(emptyRows())
	mock.ExpectQuery("FROM travel_advisory").WithArgs("Pune", 3).WillReturnRows(emptyRows())
	mock.ExpectQuery("FROM recommendations ORDER BY RAND").WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"locations", "intent", "recommendation"}).
			AddRow("Goa", "hotel_booking", "Try a beach resort"))

	svc := RecommendationService{
		Travel:          repositories.TravelRepository{Store: store},
		QueryLog:        repositories.QueryLogRepository{Store: store},
		Recommendations: repositories.RecommendationRepository{Store: store},
		Intn:            func(int) int { return 0 },
	}
	rec, err := svc.For(context.Background(), testSession)
	if err != nil {
		t.Fatalf("For: %v", err)
	}
	if rec.Greeting != "Hello Asha! Based on your frequent searches, I have some personalized travel recommendations for you." {
		t.Fatalf("greeting = %q", rec.Greeting)
	}

	type head struct {
		Category intent.Category
		Heading  string
		Items    int
		Message  string
	}
	var got []head
	for _, s := range rec.Sections {
		got = append(got, head{s.Category, s.Heading, len(s.Items), s.Message})
	}
	want := []head{
		{intent.CategoryFlight, "Flight Recommendations from Mumbai to Delhi:", 1, ""},
		{intent.CategoryHotel, "Hotel Recommendations for Goa:", 0, "No hotels found in Goa."},
		{intent.CategoryAdvisory, "Travel Advisories for Pune:", 0, "No travel advisories found for Pune."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}
	item := rec.Sections[0].Items[0]
	if item.Suggestion != Suggestions[0] || item.Fields[3].Value != "₹5,400" {
		t.Fatalf("unexpected flight item: %+v", item)
	}
	if len(rec.General) != 1 || rec.GeneralNote != "" {
		t.Fatalf("unexpected general recommendations: %+v", rec.General)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecommendationsSingleDestinationMiss(t *testing.T) {
	store, mock := newStore(t)
	svc := RecommendationService{
		Travel:   repositories.TravelRepository{Store: store},
		QueryLog: repositories.QueryLogRepository{Store: store},
	}
	mock.ExpectQuery("FROM flight WHERE LOWER\\(Destination\\)").WithArgs("Jaipur", 3).WillReturnRows(emptyRows())

	sec, err := svc.flightSection(context.Background(), "Jaipur")
	if err != nil {
		t.Fatalf("flightSection: %v", err)
	}
	if sec.Heading != "Flight Recommendations for Jaipur:" || sec.Message != "Sorry, no flights to Jaipur found in the current database." {
		t.Fatalf("unexpected section: %+v", sec)
	}
}

func TestRecommendationsRequireSession(t *testing.T) {
	if _, err := (RecommendationService{}).For(context.Background(), domain.Session{}); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
