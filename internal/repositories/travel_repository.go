package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"travelbot/internal/domain/models"
)

// TravelRepository queries the four synthetic travel datasets.
type TravelRepository struct {
	Store
}

// FlightFilter narrows flight rows. Month ("YYYY-MM") and the From/To range
// are alternatives; Month wins when both are set.
type FlightFilter struct {
	Source      string
	Destination string
	Month       string
	From        string
	To          string
	Airline     string
	Limit       int
}

// HotelFilter narrows hotel rows. CheckInFrom/CheckInTo bound the check-in
// date; StayFrom/StayTo select stays overlapping that window.
type HotelFilter struct {
	City        string
	RoomType    string
	CheckInFrom string
	CheckInTo   string
	StayFrom    string
	StayTo      string
	Limit       int
}

// CarFilter narrows car rental rows. PickupDate is an exact match; the
// From/To range applies when it is empty.
type CarFilter struct {
	City       string
	CarType    string
	PickupDate string
	PickupFrom string
	PickupTo   string
	Limit      int
}

type AdvisoryFilter struct {
	City   string
	Date   string
	Levels []string
	Limit  int
}

const flightCols = `COALESCE(Airline,''), COALESCE(Date_of_Journey,''), COALESCE(Source,''), COALESCE(Destination,''),
	COALESCE(Dep_Time,''), COALESCE(Duration,''), COALESCE(Total_Stops,''), COALESCE(Additional_Info,''),
	COALESCE(Price,0), COALESCE(Arrival_Time,'')`

func (r TravelRepository) Flights(ctx context.Context, f FlightFilter) ([]models.Flight, error) {
	var w where
	if f.Source != "" {
		w.add("LOWER(Source)=LOWER(?)", f.Source)
	}
	if f.Destination != "" {
		w.add("LOWER(Destination)=LOWER(?)", f.Destination)
	}
	switch {
	case f.Month != "":
		w.add("Date_of_Journey LIKE ?", f.Month+"%")
	case f.From != "" && f.To != "":
		w.add("Date_of_Journey BETWEEN ? AND ?", f.From, f.To)
	case f.From != "":
		w.add("Date_of_Journey >= ?", f.From)
	}
	if f.Airline != "" {
		w.add("LOWER(Airline) LIKE ?", likeTerm(f.Airline))
	}

	rows, err := r.query(ctx, "flight", flightCols, w, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Flight
	for rows.Next() {
		var fl models.Flight
		if err := rows.Scan(&fl.Airline, &fl.DateOfJourney, &fl.Source, &fl.Destination, &fl.DepTime,
			&fl.Duration, &fl.TotalStops, &fl.AdditionalInfo, &fl.Price, &fl.ArrivalTime); err != nil {
			return nil, err
		}
		out = append(out, fl)
	}
	return out, rows.Err()
}

const hotelCols = `COALESCE(Hotel_Name,''), COALESCE(City,''), COALESCE(Check_In_Date,''), COALESCE(Room_Type,''),
	COALESCE(Price_Per_Night,0), COALESCE(Availability_Status,''), COALESCE(Additional_Info,''),
	COALESCE(Check_Out_Date,''), COALESCE(Total_Nights,0)`

func (r TravelRepository) Hotels(ctx context.Context, f HotelFilter) ([]models.Hotel, error) {
	var w where
	if f.City != "" {
		w.add("LOWER(City)=LOWER(?)", f.City)
	}
	if f.CheckInFrom != "" && f.CheckInTo != "" {
		w.add("Check_In_Date BETWEEN ? AND ?", f.CheckInFrom, f.CheckInTo)
	}
	switch {
	case f.StayFrom != "" && f.StayTo != "":
		w.add("Check_In_Date <= ?", f.StayTo)
		w.add("Check_Out_Date >= ?", f.StayFrom)
	case f.StayFrom != "":
		w.add("Check_Out_Date >= ?", f.StayFrom)
	}
	if f.RoomType != "" {
		w.add("LOWER(Room_Type) LIKE ?", likeTerm(f.RoomType))
	}

	rows, err := r.query(ctx, "hotel", hotelCols, w, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Hotel
	for rows.Next() {
		var h models.Hotel
		if err := rows.Scan(&h.HotelName, &h.City, &h.CheckInDate, &h.RoomType, &h.PricePerNight,
			&h.AvailabilityStatus, &h.AdditionalInfo, &h.CheckOutDate, &h.TotalNights); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

const carCols = `COALESCE(Car_Rental_Company,''), COALESCE(City,''), COALESCE(Pickup_Date,''), COALESCE(Car_Type,''),
	COALESCE(Price_Per_Day,0), COALESCE(Availability_Status,''), COALESCE(Additional_Info,''),
	COALESCE(Return_Date,''), COALESCE(Total_Days,0)`

func (r TravelRepository) CarRentals(ctx context.Context, f CarFilter) ([]models.CarRental, error) {
	var w where
	if f.City != "" {
		w.add("LOWER(City)=LOWER(?)", f.City)
	}
	switch {
	case f.PickupDate != "":
		w.add("Pickup_Date=?", f.PickupDate)
	case f.PickupFrom != "" && f.PickupTo != "":
		w.add("Pickup_Date BETWEEN ? AND ?", f.PickupFrom, f.PickupTo)
	case f.PickupFrom != "":
		w.add("Pickup_Date >= ?", f.PickupFrom)
	}
	if f.CarType != "" {
		w.add("LOWER(Car_Type) LIKE ?", likeTerm(f.CarType))
	}

	rows, err := r.query(ctx, "car_rental", carCols, w, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CarRental
	for rows.Next() {
		var c models.CarRental
		if err := rows.Scan(&c.Company, &c.City, &c.PickupDate, &c.CarType, &c.PricePerDay,
			&c.AvailabilityStatus, &c.AdditionalInfo, &c.ReturnDate, &c.TotalDays); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const advisoryCols = `COALESCE(City,''), COALESCE(Advisory_Date,''), COALESCE(Advisory_Level,''), COALESCE(Reason,''),
	COALESCE(Affected_Routes,''), COALESCE(Additional_Info,''), COALESCE(Validity,'')`

func (r TravelRepository) Advisories(ctx context.Context, f AdvisoryFilter) ([]models.Advisory, error) {
	var w where
	if f.City != "" {
		w.add("LOWER(City)=LOWER(?)", f.City)
	}
	if f.Date != "" {
		w.add("Advisory_Date=?", f.Date)
	}
	if len(f.Levels) > 0 {
		marks := make([]string, len(f.Levels))
		args := make([]any, len(f.Levels))
		for i, l := range f.Levels {
			marks[i] = "LOWER(?)"
			args[i] = l
		}
		w.add("LOWER(Advisory_Level) IN ("+strings.Join(marks, ", ")+")", args...)
	}

	rows, err := r.query(ctx, "travel_advisory", advisoryCols, w, f.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Advisory
	for rows.Next() {
		var a models.Advisory
		if err := rows.Scan(&a.City, &a.AdvisoryDate, &a.AdvisoryLevel, &a.Reason,
			&a.AffectedRoutes, &a.AdditionalInfo, &a.Validity); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SevereAdvisories returns Severe and High advisories issued on date.
func (r TravelRepository) SevereAdvisories(ctx context.Context, date string) ([]models.Advisory, error) {
	return r.Advisories(ctx, AdvisoryFilter{Date: date, Levels: []string{"Severe", "High"}})
}

func (r TravelRepository) query(ctx context.Context, table, cols string, w where, limit int) (*sql.Rows, error) {
	db := r.db()
	if db == nil {
		return nil, sql.ErrConnDone
	}
	q := "SELECT " + cols + " FROM " + table + w.String()
	args := w.args
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return rows, nil
}
