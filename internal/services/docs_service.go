package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"travelbot/internal/domain"
	"travelbot/internal/domain/models"
	"travelbot/internal/repositories"
	"travelbot/internal/utils"
)

// DocsService renders booking receipts as PDF.
type DocsService struct {
	Bookings  repositories.BookingRepository
	RequestID string
	Loader    func(ctx context.Context, id, email string) (models.Booking, error)
}

type receiptLine struct {
	Label string
	Value string
}

type receiptData struct {
	Booking  models.Booking
	Customer string
	Lines    []receiptLine
	Total    float64
}

// GenerateReceipt builds the receipt of one of the session user's bookings.
func (s DocsService) GenerateReceipt(ctx context.Context, sess domain.Session, id string) ([]byte, string, error) {
	if err := requireSession(sess); err != nil {
		return nil, "", err
	}
	b, err := s.load(ctx, strings.TrimSpace(id), sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", domain.NotFoundError{Resource: "booking", Msg: fmt.Sprintf("Booking ID: %s not found.", id)}
	}
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to load booking", Err: err}
	}
	utils.LogEvent(s.RequestID, "docs", "generate_receipt", "booking_id="+b.BookingID)
	pdf, name, err := buildReceiptPDF(receiptFor(b, sess.Name))
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to render receipt", Err: err}
	}
	return pdf, name, nil
}

func (s DocsService) load(ctx context.Context, id, email string) (models.Booking, error) {
	if s.Loader != nil {
		return s.Loader(ctx, id, email)
	}
	return s.Bookings.Get(ctx, id, email)
}

func receiptFor(b models.Booking, customer string) receiptData {
	d := receiptData{Booking: b, Customer: customer}
	switch b.ServiceType {
	case ServiceFlight:
		var f models.FlightDetails
		if json.Unmarshal([]byte(b.Details), &f) == nil {
			d.Lines = []receiptLine{
				{"Route", fmt.Sprintf("%s -> %s", safe(f.Source, "-"), safe(f.Destination, "-"))},
				{"Departure", safe(dateOnly(f.Departure), "-")},
				{"Return", safe(dateOnly(f.Return), "N/A")},
				{"Class", safe(f.Class, "-")},
				{"Flight", safe(f.Flight, "-")},
				{"Payment", safe(f.PaymentMethod, "-")},
			}
			d.Total = f.Price
		}
	case ServiceHotel:
		var h models.HotelDetails
		if json.Unmarshal([]byte(b.Details), &h) == nil {
			d.Lines = []receiptLine{
				{"Hotel", safe(h.Hotel, "-")},
				{"City", safe(h.City, "-")},
				{"Stay", fmt.Sprintf("%s to %s (%d night(s))", dateOnly(h.CheckIn), dateOnly(h.CheckOut), h.Nights)},
				{"Room Type", safe(h.RoomType, "-")},
				{"Rate", utils.FormatINR(h.PricePerNight) + " per night"},
				{"Payment", safe(h.PaymentMethod, "-")},
			}
			d.Total = h.Total
		}
	case ServiceCar:
		var c models.CarDetails
		if json.Unmarshal([]byte(b.Details), &c) == nil {
			d.Lines = []receiptLine{
				{"Car", safe(c.Car, "-")},
				{"City", safe(c.City, "-")},
				{"Rental", fmt.Sprintf("%s to %s (%d day(s))", dateOnly(c.PickUp), dateOnly(c.DropOff), c.Days)},
				{"Rate", utils.FormatINR(c.PricePerDay) + " per day"},
				{"Payment", safe(c.PaymentMethod, "-")},
			}
			d.Total = c.Total
		}
	}
	if len(d.Lines) == 0 {
		d.Lines = []receiptLine{{"Details", safe(b.Details, "-")}}
	}
	return d
}

func buildReceiptPDF(d receiptData) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	header := []receiptLine{
		{"Booking ID", d.Booking.BookingID},
		{"Service", capitalize(d.Booking.ServiceType)},
		{"Customer", safe(d.Customer, d.Booking.UserEmail)},
		{"Email", safe(d.Booking.UserEmail, "-")},
		{"Booked At", d.Booking.BookingDate.UTC().Format(utils.LayoutDateTime) + " UTC"},
		{"Status", bookingStatus(d.Booking)},
	}
	for _, l := range append(header, d.Lines...) {
		pdf.Cell(0, 7, fmt.Sprintf("%-12s: %s", l.Label, l.Value))
		pdf.Ln(7)
	}

	if d.Total > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Total: "+utils.FormatINR(d.Total))
		pdf.Ln(10)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Bookings can be canceled within 24 hours of the booking time.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%s.pdf", safeFilenamePart(d.Booking.BookingID))
	return buf.Bytes(), filename, nil
}

func bookingStatus(b models.Booking) string {
	if b.Canceled {
		return "Canceled"
	}
	return "Active"
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func dateOnly(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 10 {
		return v[:10]
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
