package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/xuri/excelize/v2"

	"travelbot/internal/domain"
	"travelbot/internal/domain/models"
	"travelbot/internal/repositories"
	"travelbot/internal/utils"
)

const (
	ServiceFlight = "flight"
	ServiceHotel  = "hotel"
	ServiceCar    = "car"

	cancelWindow = 24 * time.Hour
)

var (
	PaymentMethods = []string{"Credit Card", "Debit Card", "UPI"}
	FlightClasses  = []string{"Business", "First"}

	// RoomPrices are INR per night.
	RoomPrices = map[string]float64{"Single": 2000, "Double": 3500, "Suite": 6000, "Deluxe": 8000}
	// CarPrices are INR per day.
	CarPrices = map[string]float64{"Economy": 1500, "SUV": 3000, "Luxury": 5000, "Van": 4000}

	bookingPrefix = map[string]string{ServiceFlight: "FL", ServiceHotel: "HL", ServiceCar: "CR"}
)

var (
	defaultNodeOnce sync.Once
	defaultNode     *snowflake.Node
)

// BookingService books flights, hotels and cars for the signed-in user and
// manages their booking history.
type BookingService struct {
	Bookings  repositories.BookingRepository
	Node      *snowflake.Node
	RequestID string
	Now       func() time.Time
}

type FlightBookingInput struct {
	Source        string  `json:"source"`
	Destination   string  `json:"destination"`
	Departure     string  `json:"departure"`
	Return        string  `json:"return"`
	Class         string  `json:"class"`
	Flight        string  `json:"flight"`
	Price         float64 `json:"price"`
	PaymentMethod string  `json:"payment_method"`
}

type HotelBookingInput struct {
	Hotel         string `json:"hotel"`
	City          string `json:"city"`
	CheckIn       string `json:"check_in"`
	CheckOut      string `json:"check_out"`
	RoomType      string `json:"room_type"`
	PaymentMethod string `json:"payment_method"`
}

// CarBookingInput books either a live car (PricePerDay from its final
// price) or a car type from the price table.
type CarBookingInput struct {
	Car           string  `json:"car"`
	CarType       string  `json:"car_type"`
	City          string  `json:"city"`
	PickUp        string  `json:"pick_up"`
	DropOff       string  `json:"drop_off"`
	PricePerDay   float64 `json:"price_per_day"`
	PaymentMethod string  `json:"payment_method"`
}

type BookingResult struct {
	Booking models.Booking `json:"booking"`
	Message string         `json:"message"`
}

// HistoryEntry is one row of the booking history table.
type HistoryEntry struct {
	BookingID   string `json:"booking_id"`
	Service     string `json:"service"`
	Details     string `json:"details"`
	BookingDate string `json:"booking_date"`
	Eligible    string `json:"eligible_for_cancellation"`
}

type History struct {
	Entries []HistoryEntry `json:"entries"`
	Message string         `json:"message,omitempty"`
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s BookingService) node() *snowflake.Node {
	if s.Node != nil {
		return s.Node
	}
	defaultNodeOnce.Do(func() {
		defaultNode, _ = snowflake.NewNode(1)
	})
	return defaultNode
}

// NewBookingID builds "<prefix><yyyymmddHHMMSS>-<suffix>".
func (s BookingService) NewBookingID(serviceType string, at time.Time) string {
	return fmt.Sprintf("%s%s-%s", bookingPrefix[serviceType], utils.Stamp(at), strings.ToUpper(s.node().Generate().Base36()))
}

func (s BookingService) BookFlight(ctx context.Context, sess domain.Session, in FlightBookingInput) (BookingResult, error) {
	if err := requireSession(sess); err != nil {
		return BookingResult{}, err
	}
	src, dst := strings.TrimSpace(in.Source), strings.TrimSpace(in.Destination)
	if src == "" || dst == "" {
		return BookingResult{}, domain.ValidationError{Msg: "Source and Destination are required."}
	}
	if strings.EqualFold(src, dst) {
		return BookingResult{}, domain.ValidationError{Msg: "Source and Destination cannot be the same."}
	}
	dep, err := utils.ParseDate(in.Departure)
	if err != nil {
		return BookingResult{}, domain.ValidationError{Field: "departure", Msg: "must be YYYY-MM-DD", Err: err}
	}
	if strings.TrimSpace(in.Return) != "" {
		ret, err := utils.ParseDate(in.Return)
		if err != nil {
			return BookingResult{}, domain.ValidationError{Field: "return", Msg: "must be YYYY-MM-DD", Err: err}
		}
		if ret.Before(dep) {
			return BookingResult{}, domain.ValidationError{Msg: "Return date cannot be before the departure date."}
		}
	}
	class, err := oneOf("class", in.Class, FlightClasses)
	if err != nil {
		return BookingResult{}, err
	}
	pay, err := oneOf("payment_method", in.PaymentMethod, PaymentMethods)
	if err != nil {
		return BookingResult{}, err
	}

	d := models.FlightDetails{
		Source:        src,
		Destination:   dst,
		Departure:     utils.FormatDate(dep),
		Return:        strings.TrimSpace(in.Return),
		Class:         class,
		Flight:        safe(in.Flight, fmt.Sprintf("%s to %s", src, dst)),
		Price:         in.Price,
		PaymentMethod: pay,
	}
	b, err := s.create(ctx, sess, ServiceFlight, d)
	if err != nil {
		return BookingResult{}, err
	}
	return BookingResult{Booking: b, Message: fmt.Sprintf("Flight booked successfully! Booking ID: %s", b.BookingID)}, nil
}

func (s BookingService) BookHotel(ctx context.Context, sess domain.Session, in HotelBookingInput) (BookingResult, error) {
	if err := requireSession(sess); err != nil {
		return BookingResult{}, err
	}
	if strings.TrimSpace(in.Hotel) == "" {
		return BookingResult{}, domain.ValidationError{Field: "hotel", Msg: "hotel is required"}
	}
	in1, err := utils.ParseDate(in.CheckIn)
	if err != nil {
		return BookingResult{}, domain.ValidationError{Field: "check_in", Msg: "must be YYYY-MM-DD", Err: err}
	}
	out, err := utils.ParseDate(in.CheckOut)
	if err != nil {
		return BookingResult{}, domain.ValidationError{Field: "check_out", Msg: "must be YYYY-MM-DD", Err: err}
	}
	nights := utils.DaysBetween(in1, out)
	if nights <= 0 {
		return BookingResult{}, domain.ValidationError{Msg: "Check-out date must be after check-in date and at least a one-night stay."}
	}
	room, err := oneOfKeys("room_type", in.RoomType, RoomPrices)
	if err != nil {
		return BookingResult{}, err
	}
	pay, err := oneOf("payment_method", in.PaymentMethod, PaymentMethods)
	if err != nil {
		return BookingResult{}, err
	}

	rate := RoomPrices[room]
	d := models.HotelDetails{
		Hotel:         strings.TrimSpace(in.Hotel),
		City:          strings.TrimSpace(in.City),
		CheckIn:       utils.FormatDate(in1),
		CheckOut:      utils.FormatDate(out),
		RoomType:      room,
		Nights:        nights,
		PricePerNight: rate,
		Total:         rate * float64(nights),
		PaymentMethod: pay,
	}
	b, err := s.create(ctx, sess, ServiceHotel, d)
	if err != nil {
		return BookingResult{}, err
	}
	return BookingResult{Booking: b, Message: fmt.Sprintf("Hotel booked successfully! Booking ID: %s", b.BookingID)}, nil
}

func (s BookingService) BookCar(ctx context.Context, sess domain.Session, in CarBookingInput) (BookingResult, error) {
	if err := requireSession(sess); err != nil {
		return BookingResult{}, err
	}
	pick, err := utils.ParseDate(in.PickUp)
	if err != nil {
		return BookingResult{}, domain.ValidationError{Field: "pick_up", Msg: "must be YYYY-MM-DD", Err: err}
	}
	drop, err := utils.ParseDate(in.DropOff)
	if err != nil {
		return BookingResult{}, domain.ValidationError{Field: "drop_off", Msg: "must be YYYY-MM-DD", Err: err}
	}
	days := utils.DaysBetween(pick, drop)
	if days <= 0 {
		return BookingResult{}, domain.ValidationError{Msg: "Drop-off date must be at least one day after the pick-up date."}
	}

	rate, carType := in.PricePerDay, ""
	if rate <= 0 {
		carType, err = oneOfKeys("car_type", in.CarType, CarPrices)
		if err != nil {
			return BookingResult{}, err
		}
		rate = CarPrices[carType]
	}
	car := strings.TrimSpace(in.Car)
	if car == "" {
		car = carType
	}
	if car == "" {
		return BookingResult{}, domain.ValidationError{Field: "car", Msg: "car is required"}
	}
	pay, err := oneOf("payment_method", in.PaymentMethod, PaymentMethods)
	if err != nil {
		return BookingResult{}, err
	}

	d := models.CarDetails{
		Car:           car,
		CarType:       carType,
		City:          strings.TrimSpace(in.City),
		PickUp:        utils.FormatDate(pick),
		DropOff:       utils.FormatDate(drop),
		Days:          days,
		PricePerDay:   rate,
		Total:         rate * float64(days),
		PaymentMethod: pay,
	}
	b, err := s.create(ctx, sess, ServiceCar, d)
	if err != nil {
		return BookingResult{}, err
	}
	return BookingResult{Booking: b, Message: fmt.Sprintf("Car rental booked successfully! Booking ID: %s", b.BookingID)}, nil
}

func (s BookingService) create(ctx context.Context, sess domain.Session, serviceType string, details any) (models.Booking, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "failed to encode booking", Err: err}
	}
	at := s.now().UTC().Truncate(time.Second)
	b := models.Booking{
		BookingID:   s.NewBookingID(serviceType, at),
		UserEmail:   sess.Email,
		ServiceType: serviceType,
		Details:     string(raw),
		BookingDate: at,
	}
	if err := s.Bookings.Create(ctx, b); err != nil {
		return models.Booking{}, domain.InternalError{Msg: "failed to save booking", Err: err}
	}
	utils.LogEvent(s.RequestID, "booking", "create", fmt.Sprintf("booking_id=%s service=%s", b.BookingID, serviceType))
	return b, nil
}

// History lists the user's active or canceled bookings.
func (s BookingService) History(ctx context.Context, sess domain.Session, canceled bool) (History, error) {
	if err := requireSession(sess); err != nil {
		return History{}, err
	}
	rows, err := s.Bookings.ListByUser(ctx, sess.Email, canceled)
	if err != nil {
		return History{}, domain.InternalError{Msg: "failed to load bookings", Err: err}
	}
	h := History{Entries: make([]HistoryEntry, 0, len(rows))}
	for _, b := range rows {
		h.Entries = append(h.Entries, s.entry(b))
	}
	if len(h.Entries) == 0 {
		h.Message = "No active bookings found."
		if canceled {
			h.Message = "No canceled bookings found."
		}
	}
	return h, nil
}

// Cancelable lists active bookings made within the last 24 hours.
func (s BookingService) Cancelable(ctx context.Context, sess domain.Session) (History, error) {
	h, err := s.History(ctx, sess, false)
	if err != nil {
		return History{}, err
	}
	out := History{Entries: []HistoryEntry{}}
	for _, e := range h.Entries {
		if e.Eligible == "Yes" {
			out.Entries = append(out.Entries, e)
		}
	}
	if len(out.Entries) == 0 {
		out.Message = "No bookings eligible for cancellation."
	}
	return out, nil
}

func (s BookingService) Cancel(ctx context.Context, sess domain.Session, id string) (string, error) {
	if err := requireSession(sess); err != nil {
		return "", err
	}
	id = strings.TrimSpace(id)
	b, err := s.Bookings.Get(ctx, id, sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.NotFoundError{Resource: "booking", Msg: fmt.Sprintf("Booking ID: %s not found.", id)}
	}
	if err != nil {
		return "", domain.InternalError{Msg: "failed to load booking", Err: err}
	}
	if b.Canceled {
		return "", domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("Booking ID: %s is already canceled.", id)}
	}
	if !s.eligible(b) {
		return "", domain.ConflictError{Resource: "booking", Msg: fmt.Sprintf("Booking ID: %s is no longer eligible for cancellation.", id)}
	}
	ok, err := s.Bookings.Cancel(ctx, id, sess.Email)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to cancel booking", Err: err}
	}
	if !ok {
		return "", domain.NotFoundError{Resource: "booking", Msg: fmt.Sprintf("Booking ID: %s not found.", id)}
	}
	utils.LogEvent(s.RequestID, "booking", "cancel", "booking_id="+id)
	return fmt.Sprintf("Booking ID: %s canceled.", id), nil
}

// Export writes all of the user's bookings to an XLSX workbook.
func (s BookingService) Export(ctx context.Context, sess domain.Session) ([]byte, string, error) {
	if err := requireSession(sess); err != nil {
		return nil, "", err
	}
	var entries []HistoryEntry
	var status []string
	for _, canceled := range []bool{false, true} {
		rows, err := s.Bookings.ListByUser(ctx, sess.Email, canceled)
		if err != nil {
			return nil, "", domain.InternalError{Msg: "failed to load bookings", Err: err}
		}
		for _, b := range rows {
			entries = append(entries, s.entry(b))
			if canceled {
				status = append(status, "Canceled")
			} else {
				status = append(status, "Active")
			}
		}
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Bookings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", domain.InternalError{Msg: "failed to build workbook", Err: err}
	}
	header := []any{"Booking ID", "Service", "Details", "Booking Date", "Status", "Eligible for Cancellation"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, "", domain.InternalError{Msg: "failed to build workbook", Err: err}
	}
	for i, e := range entries {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{e.BookingID, e.Service, e.Details, e.BookingDate, status[i], e.Eligible}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, "", domain.InternalError{Msg: "failed to build workbook", Err: err}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", domain.InternalError{Msg: "failed to write workbook", Err: err}
	}
	utils.LogEvent(s.RequestID, "booking", "export", fmt.Sprintf("rows=%d", len(entries)))
	return buf.Bytes(), fmt.Sprintf("BOOKINGS_%s_%s.xlsx", safeFilenamePart(sess.Name), utils.Stamp(s.now())), nil
}

func (s BookingService) eligible(b models.Booking) bool {
	return !b.Canceled && s.now().Sub(b.BookingDate) <= cancelWindow
}

func (s BookingService) entry(b models.Booking) HistoryEntry {
	e := HistoryEntry{
		BookingID:   b.BookingID,
		Service:     capitalize(b.ServiceType),
		Details:     FormatBookingDetails(b),
		BookingDate: b.BookingDate.UTC().Format(utils.LayoutDateTime),
		Eligible:    "No",
	}
	if s.eligible(b) {
		e.Eligible = "Yes"
	}
	return e
}

// FormatBookingDetails renders the stored details as one line. Unknown or
// malformed details are returned as stored.
func FormatBookingDetails(b models.Booking) string {
	switch b.ServiceType {
	case ServiceFlight:
		var d models.FlightDetails
		if json.Unmarshal([]byte(b.Details), &d) == nil {
			return fmt.Sprintf("Source: %s, Destination: %s, Departure: %s, Return: %s, Class: %s, Flight: %s, Payment: %s",
				d.Source, d.Destination, d.Departure, safe(d.Return, "N/A"), d.Class, d.Flight, d.PaymentMethod)
		}
	case ServiceHotel:
		var d models.HotelDetails
		if json.Unmarshal([]byte(b.Details), &d) == nil {
			return fmt.Sprintf("Hotel: %s, City: %s, Check-in: %s, Check-out: %s, Room Type: %s, Payment: %s",
				d.Hotel, d.City, d.CheckIn, d.CheckOut, d.RoomType, d.PaymentMethod)
		}
	case ServiceCar:
		var d models.CarDetails
		if json.Unmarshal([]byte(b.Details), &d) == nil {
			return fmt.Sprintf("Car: %s, City: %s, Pick-up: %s, Drop-off: %s, Payment: %s",
				d.Car, d.City, d.PickUp, d.DropOff, d.PaymentMethod)
		}
	}
	return b.Details
}

func requireSession(sess domain.Session) error {
	if sess.Anonymous() {
		return domain.ValidationError{Msg: "Please log in to continue."}
	}
	return nil
}

// oneOf matches v case-insensitively against allowed and returns the
// canonical spelling.
func oneOf(field, v string, allowed []string) (string, error) {
	v = strings.TrimSpace(v)
	for _, a := range allowed {
		if strings.EqualFold(a, v) {
			return a, nil
		}
	}
	return "", domain.ValidationError{Field: field, Msg: "must be one of " + strings.Join(allowed, ", ")}
}

func oneOfKeys(field, v string, prices map[string]float64) (string, error) {
	keys := make([]string, 0, len(prices))
	for k := range prices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return oneOf(field, v, keys)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
