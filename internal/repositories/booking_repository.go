package repositories

import (
	"context"
	"database/sql"
	"time"

	"travelbot/internal/domain/models"
	"travelbot/internal/utils"
)

// BookingRepository persists reservations. booking_date is stored as
// "YYYY-MM-DD HH:MM:SS" in UTC.
type BookingRepository struct {
	Store
}

func (r BookingRepository) Create(ctx context.Context, b models.Booking) error {
	db := r.db()
	if db == nil {
		return sql.ErrConnDone
	}
	if b.BookingDate.IsZero() {
		b.BookingDate = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO bookings (booking_id, user_email, service_type, details, booking_date, canceled)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.BookingID, normalizeEmail(b.UserEmail), b.ServiceType, b.Details,
		b.BookingDate.UTC().Format(utils.LayoutDateTime), boolInt(b.Canceled))
	return err
}

// ListByUser returns the user's bookings with the given canceled flag,
// newest first.
func (r BookingRepository) ListByUser(ctx context.Context, email string, canceled bool) ([]models.Booking, error) {
	db := r.db()
	if db == nil {
		return nil, sql.ErrConnDone
	}
	rows, err := db.QueryContext(ctx, `
		SELECT booking_id, user_email, service_type, COALESCE(details,''), booking_date, canceled
		FROM bookings WHERE user_email = ? AND canceled = ?
		ORDER BY booking_date DESC, booking_id DESC`, normalizeEmail(email), boolInt(canceled))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Get loads one booking owned by email; sql.ErrNoRows when absent.
func (r BookingRepository) Get(ctx context.Context, id, email string) (models.Booking, error) {
	db := r.db()
	if db == nil {
		return models.Booking{}, sql.ErrConnDone
	}
	row := db.QueryRowContext(ctx, `
		SELECT booking_id, user_email, service_type, COALESCE(details,''), booking_date, canceled
		FROM bookings WHERE booking_id = ? AND user_email = ? LIMIT 1`, id, normalizeEmail(email))
	return scanBooking(row)
}

// Cancel flags the booking as canceled and reports whether a row changed.
func (r BookingRepository) Cancel(ctx context.Context, id, email string) (bool, error) {
	db := r.db()
	if db == nil {
		return false, sql.ErrConnDone
	}
	res, err := db.ExecContext(ctx, `UPDATE bookings SET canceled = 1 WHERE booking_id = ? AND user_email = ?`,
		id, normalizeEmail(email))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (models.Booking, error) {
	var b models.Booking
	var date string
	var canceled int
	if err := s.Scan(&b.BookingID, &b.UserEmail, &b.ServiceType, &b.Details, &date, &canceled); err != nil {
		return models.Booking{}, err
	}
	if t, err := time.ParseInLocation(utils.LayoutDateTime, date, time.UTC); err == nil {
		b.BookingDate = t
	}
	b.Canceled = canceled != 0
	return b, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
