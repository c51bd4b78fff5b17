package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang/snappy"

	intdb "travelbot/internal/db"
	"travelbot/internal/domain/models"
)

func TestQueryLogInsert(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectExec("INSERT INTO user_queries").
		WithArgs("ravi@example.com", "book a flight", "flight_booking", "Delhi, Mumbai", "2024-10-15", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := QueryLogRepository{store}.Insert(context.Background(), models.UserQuery{
		UserEmail: " Ravi@Example.com ", Query: "book a flight", Intent: "flight_booking",
		Locations: "Delhi, Mumbai", Dates: "2024-10-15",
	})
	if err != nil || id != 7 {
		t.Fatalf("Insert = %d, %v", id, err)
	}
}

func TestMostCommonLocation(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery(`FROM user_queries WHERE intent IN \(\?, \?\) AND .* AND user_email = \? GROUP BY locations`).
		WithArgs("flight_booking", "flight_status", "u@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"locations", "n"}).AddRow("Delhi, Mumbai", 3))
	mock.ExpectQuery(`GROUP BY locations`).
		WithArgs("hotel_booking").
		WillReturnError(sql.ErrNoRows)

	repo := QueryLogRepository{store}
	got, err := repo.MostCommonLocation(context.Background(), []string{"flight_booking", "flight_status"}, "U@x.com")
	if err != nil || got != "Delhi, Mumbai" {
		t.Fatalf("MostCommonLocation = %q, %v", got, err)
	}
	got, err = repo.MostCommonLocation(context.Background(), []string{"hotel_booking"}, "")
	if err != nil || got != "" {
		t.Fatalf("expected empty result, got %q, %v", got, err)
	}
	if got, _ := repo.MostCommonLocation(context.Background(), nil, ""); got != "" {
		t.Fatalf("no intents should yield nothing")
	}
}

func TestUserRepository(t *testing.T) {
	store, mock := newMock(t)
	mock.ExpectQuery("FROM users WHERE email = ").
		WithArgs("ana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at"}).
			AddRow(1, "Ana", "ana@example.com", "", int64(1700000000)))
	mock.ExpectExec("INSERT INTO users").
		WithArgs("Ben", "ben@example.com", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))

	repo := UserRepository{store}
	u, err := repo.FindByEmail(context.Background(), "ANA@example.com")
	if err != nil || u.Name != "Ana" || u.CreatedAt.Unix() != 1700000000 {
		t.Fatalf("FindByEmail = %+v, %v", u, err)
	}
	created, err := repo.Create(context.Background(), models.User{Name: " Ben ", Email: "Ben@Example.com"})
	if err != nil || created.ID != 2 || created.Email != "ben@example.com" {
		t.Fatalf("Create = %+v, %v", created, err)
	}
}

func TestBookingRepository(t *testing.T) {
	store, mock := newMock(t)
	when := time.Date(2024, 10, 14, 9, 30, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO bookings").
		WithArgs("FL20241014093000-abc", "u@x.com", "Flight", `{"class":"Business"}`, "2024-10-14 09:30:00", 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM bookings WHERE booking_id = ").
		WithArgs("FL20241014093000-abc", "u@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "user_email", "service_type", "details", "booking_date", "canceled"}).
			AddRow("FL20241014093000-abc", "u@x.com", "Flight", `{"class":"Business"}`, "2024-10-14 09:30:00", 0))
	mock.ExpectExec("UPDATE bookings SET canceled = 1").
		WithArgs("missing", "u@x.com").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := BookingRepository{store}
	err := repo.Create(context.Background(), models.Booking{
		BookingID: "FL20241014093000-abc", UserEmail: "u@x.com", ServiceType: "Flight",
		Details: `{"class":"Business"}`, BookingDate: when,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := repo.Get(context.Background(), "FL20241014093000-abc", "u@x.com")
	if err != nil || !b.BookingDate.Equal(when) || b.Canceled {
		t.Fatalf("Get = %+v, %v", b, err)
	}
	ok, err := repo.Cancel(context.Background(), "missing", "u@x.com")
	if err != nil || ok {
		t.Fatalf("Cancel of a missing booking = %v, %v", ok, err)
	}
}

func TestAPICacheRoundTrip(t *testing.T) {
	store, mock := newMock(t)
	payload := []byte(`{"data":[1,2,3]}`)
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM api_data").WithArgs("flights", "DEL-BOM-2024-10-20").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO api_data").
		WithArgs("flights", "DEL-BOM-2024-10-20", snappy.Encode(nil, payload), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT response_data, created_at FROM api_data").
		WithArgs("flights", "DEL-BOM-2024-10-20").
		WillReturnRows(sqlmock.NewRows([]string{"response_data", "created_at"}).AddRow(snappy.Encode(nil, payload), int64(1700000000)))
	mock.ExpectExec("DELETE FROM api_data WHERE created_at").WithArgs(int64(1700000000)).WillReturnResult(sqlmock.NewResult(0, 4))

	repo := APICacheRepository{store}
	if err := repo.Put(context.Background(), "flights", "DEL-BOM-2024-10-20", payload); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := repo.Get(context.Background(), "flights", "DEL-BOM-2024-10-20")
	if err != nil || string(got.Payload) != string(payload) {
		t.Fatalf("Get = %q, %v", got.Payload, err)
	}
	n, err := repo.PurgeOlderThan(context.Background(), time.Unix(1700000000, 0))
	if err != nil || n != 4 {
		t.Fatalf("PurgeOlderThan = %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRecommendationRandomUsesDialect(t *testing.T) {
	store, mock := newMock(t)
	store.Dialect = intdb.SQLite
	mock.ExpectQuery(`ORDER BY RANDOM\(\) LIMIT \?`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"locations", "intent", "recommendation"}).
			AddRow("Goa", "hotel_booking", "Try a beach resort"))

	got, err := RecommendationRepository{store}.Random(context.Background(), 0)
	if err != nil || len(got) != 1 || got[0].Locations != "Goa" {
		t.Fatalf("Random = %+v, %v", got, err)
	}
}
