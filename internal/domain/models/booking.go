package models

import "time"

// Booking is a persisted reservation. Details holds the service-specific
// fields as JSON.
type Booking struct {
	BookingID   string    `json:"booking_id"`
	UserEmail   string    `json:"user_email"`
	ServiceType string    `json:"service_type"`
	Details     string    `json:"details"`
	BookingDate time.Time `json:"booking_date"`
	Canceled    bool      `json:"canceled"`
}

// FlightDetails are the booking fields of a flight reservation.
type FlightDetails struct {
	Source        string  `json:"source"`
	Destination   string  `json:"destination"`
	Departure     string  `json:"departure"`
	Return        string  `json:"return,omitempty"`
	Class         string  `json:"class"`
	Flight        string  `json:"flight"`
	Price         float64 `json:"price,omitempty"`
	PaymentMethod string  `json:"payment_method"`
}

// HotelDetails are the booking fields of a hotel reservation.
type HotelDetails struct {
	Hotel         string  `json:"hotel"`
	City          string  `json:"city"`
	CheckIn       string  `json:"check_in"`
	CheckOut      string  `json:"check_out"`
	RoomType      string  `json:"room_type"`
	Nights        int     `json:"nights"`
	PricePerNight float64 `json:"price_per_night"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"payment_method"`
}

// CarDetails are the booking fields of a car reservation.
type CarDetails struct {
	Car           string  `json:"car"`
	CarType       string  `json:"car_type,omitempty"`
	City          string  `json:"city"`
	PickUp        string  `json:"pick_up"`
	DropOff       string  `json:"drop_off"`
	Days          int     `json:"days"`
	PricePerDay   float64 `json:"price_per_day"`
	Total         float64 `json:"total"`
	PaymentMethod string  `json:"payment_method"`
}

// CachedResponse is one api_data row.
type CachedResponse struct {
	ServiceType string    `json:"service_type"`
	CacheKey    string    `json:"cache_key"`
	Payload     []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
