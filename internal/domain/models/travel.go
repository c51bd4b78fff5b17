package models

// Flight is one row of the synthetic flight dataset.
type Flight struct {
	Airline        string  `json:"airline"`
	DateOfJourney  string  `json:"date_of_journey"`
	Source         string  `json:"source"`
	Destination    string  `json:"destination"`
	DepTime        string  `json:"dep_time"`
	Duration       string  `json:"duration"`
	TotalStops     string  `json:"total_stops"`
	AdditionalInfo string  `json:"additional_info"`
	Price          float64 `json:"price"`
	ArrivalTime    string  `json:"arrival_time"`
}

// Hotel is one row of the synthetic hotel dataset.
type Hotel struct {
	HotelName          string  `json:"hotel_name"`
	City               string  `json:"city"`
	CheckInDate        string  `json:"check_in_date"`
	RoomType           string  `json:"room_type"`
	PricePerNight      float64 `json:"price_per_night"`
	AvailabilityStatus string  `json:"availability_status"`
	AdditionalInfo     string  `json:"additional_info"`
	CheckOutDate       string  `json:"check_out_date"`
	TotalNights        int     `json:"total_nights"`
}

// CarRental is one row of the synthetic car rental dataset.
type CarRental struct {
	Company            string  `json:"car_rental_company"`
	City               string  `json:"city"`
	PickupDate         string  `json:"pickup_date"`
	CarType            string  `json:"car_type"`
	PricePerDay        float64 `json:"price_per_day"`
	AvailabilityStatus string  `json:"availability_status"`
	AdditionalInfo     string  `json:"additional_info"`
	ReturnDate         string  `json:"return_date"`
	TotalDays          int     `json:"total_days"`
}

// Advisory is one row of the synthetic travel advisory dataset.
type Advisory struct {
	City           string `json:"city"`
	AdvisoryDate   string `json:"advisory_date"`
	AdvisoryLevel  string `json:"advisory_level"`
	Reason         string `json:"reason"`
	AffectedRoutes string `json:"affected_routes"`
	AdditionalInfo string `json:"additional_info"`
	Validity       string `json:"validity"`
}

// Recommendation is one row of the general recommendations dataset.
type Recommendation struct {
	Locations      string `json:"locations"`
	Intent         string `json:"intent"`
	Recommendation string `json:"recommendation"`
}
