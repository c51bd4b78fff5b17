package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"travelbot/internal/domain"
	"travelbot/internal/repositories"
	"travelbot/internal/travelapi"
	"travelbot/internal/utils"
)

const (
	liveFlightLimit = 10
	liveHotelLimit  = 10
	liveCarLimit    = 15

	carPlaceholderImage = "https://via.placeholder.com/80x80"
	carPriceUnavailable = "Price details not available"
)

// LiveService queries the external travel APIs and keeps the last answer
// per query in api_data. Cached answers younger than TTL are served
// without calling the API.
type LiveService struct {
	Amadeus   *travelapi.Amadeus
	ZoomCar   *travelapi.ZoomCar
	Cache     repositories.APICacheRepository
	TTL       time.Duration
	RequestID string
	Now       func() time.Time
}

// LiveFlightInput is the live flight search form.
type LiveFlightInput struct {
	Origin        string `form:"origin" json:"origin"`
	Destination   string `form:"destination" json:"destination"`
	DepartureDate string `form:"departure_date" json:"departure_date"`
	ReturnDate    string `form:"return_date" json:"return_date"`
	Adults        int    `form:"adults" json:"adults"`
	TravelClass   string `form:"travel_class" json:"travel_class"`
}

// LiveResult is a live answer and whether it came from the cache.
type LiveResult[T any] struct {
	Items   []T    `json:"items"`
	Count   int    `json:"count"`
	Cached  bool   `json:"cached"`
	Message string `json:"message,omitempty"`
}

// CarCard is a rental car ready for display.
type CarCard struct {
	CarID         int    `json:"car_id"`
	Title         string `json:"title"`
	Brand         string `json:"brand"`
	Name          string `json:"name"`
	Image         string `json:"image"`
	Price         string `json:"price"`
	FinalPrice    string `json:"final_price"`
	Location      string `json:"location"`
	VehicleNumber string `json:"vehicle_number"`
	Accessories   string `json:"accessories"`
}

func (s LiveService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s LiveService) Flights(ctx context.Context, in LiveFlightInput) (LiveResult[travelapi.FlightCard], error) {
	var out LiveResult[travelapi.FlightCard]
	if s.Amadeus == nil {
		return out, domain.UpstreamError{Service: "amadeus", Msg: "flight search is not configured"}
	}
	origin, ok := travelapi.IATAFor(in.Origin)
	if !ok {
		return out, domain.ValidationError{Field: "origin", Msg: "Invalid city selection. Please select a valid city."}
	}
	dest, ok := travelapi.IATAFor(in.Destination)
	if !ok {
		return out, domain.ValidationError{Field: "destination", Msg: "Invalid city selection. Please select a valid city."}
	}
	if origin == dest {
		return out, domain.ValidationError{Msg: "Source and Destination cannot be the same."}
	}
	if _, err := utils.ParseDate(in.DepartureDate); err != nil {
		return out, domain.ValidationError{Field: "departure_date", Msg: "must be YYYY-MM-DD", Err: err}
	}
	if in.ReturnDate != "" {
		if _, err := utils.ParseDate(in.ReturnDate); err != nil {
			return out, domain.ValidationError{Field: "return_date", Msg: "must be YYYY-MM-DD", Err: err}
		}
	}

	q := travelapi.FlightQuery{
		Origin:        origin,
		Destination:   dest,
		DepartureDate: in.DepartureDate,
		ReturnDate:    in.ReturnDate,
		Adults:        in.Adults,
		TravelClass:   strings.ToUpper(strings.TrimSpace(in.TravelClass)),
		Max:           liveFlightLimit,
	}
	key := fmt.Sprintf("%s-%s-%s-%s-%d-%s", q.Origin, q.Destination, q.DepartureDate, q.ReturnDate, q.Adults, q.TravelClass)
	offers, cached, err := cachedFetch(ctx, s, "flight", key, func(ctx context.Context) ([]travelapi.FlightOffer, error) {
		return s.Amadeus.FlightOffers(ctx, q)
	})
	if err != nil {
		return out, err
	}
	cards := travelapi.FlightCards(offers, liveFlightLimit)
	out = LiveResult[travelapi.FlightCard]{Items: cards, Count: len(cards), Cached: cached}
	if len(cards) == 0 {
		out.Message = "No flights found for the selected route and date."
	}
	utils.LogEvent(s.RequestID, "live", "flights", fmt.Sprintf("key=%s cards=%d cached=%t", key, len(cards), cached))
	return out, nil
}

func (s LiveService) Hotels(ctx context.Context, city string) (LiveResult[travelapi.Hotel], error) {
	var out LiveResult[travelapi.Hotel]
	if s.Amadeus == nil {
		return out, domain.UpstreamError{Service: "amadeus", Msg: "hotel search is not configured"}
	}
	code, ok := travelapi.IATAFor(city)
	if !ok {
		return out, domain.ValidationError{Field: "city", Msg: "Invalid city selection. Please select a valid city."}
	}
	hotels, cached, err := cachedFetch(ctx, s, "hotel", "city:"+code, func(ctx context.Context) ([]travelapi.Hotel, error) {
		return s.Amadeus.HotelsByCity(ctx, city)
	})
	if err != nil {
		return out, err
	}
	if len(hotels) > liveHotelLimit {
		hotels = hotels[:liveHotelLimit]
	}
	if hotels == nil {
		hotels = []travelapi.Hotel{}
	}
	out = LiveResult[travelapi.Hotel]{Items: hotels, Count: len(hotels), Cached: cached}
	if len(hotels) == 0 {
		out.Message = fmt.Sprintf("No hotels found in %s.", travelapi.CityName(code))
	}
	utils.LogEvent(s.RequestID, "live", "hotels", fmt.Sprintf("city=%s hotels=%d cached=%t", code, len(hotels), cached))
	return out, nil
}

// Hotel returns one hotel by its Amadeus id.
func (s LiveService) Hotel(ctx context.Context, id string) (travelapi.Hotel, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return travelapi.Hotel{}, domain.ValidationError{Field: "id", Msg: "hotel id is required"}
	}
	if s.Amadeus == nil {
		return travelapi.Hotel{}, domain.UpstreamError{Service: "amadeus", Msg: "hotel search is not configured"}
	}
	hotels, _, err := cachedFetch(ctx, s, "hotel", "id:"+id, func(ctx context.Context) ([]travelapi.Hotel, error) {
		return s.Amadeus.HotelsByID(ctx, id)
	})
	if err != nil {
		return travelapi.Hotel{}, err
	}
	if len(hotels) == 0 {
		return travelapi.Hotel{}, domain.NotFoundError{Resource: "hotel", Msg: "No details found for the selected hotel."}
	}
	return hotels[0], nil
}

func (s LiveService) Cars(ctx context.Context, city string) (LiveResult[CarCard], error) {
	var out LiveResult[CarCard]
	city = strings.TrimSpace(city)
	if city == "" {
		return out, domain.ValidationError{Field: "city", Msg: "city is required"}
	}
	if s.ZoomCar == nil {
		return out, domain.UpstreamError{Service: "zoomcar", Msg: "car search is not configured"}
	}
	cars, cached, err := cachedFetch(ctx, s, "car", strings.ToLower(city), func(ctx context.Context) ([]travelapi.Car, error) {
		return s.ZoomCar.SearchByLocation(ctx, city)
	})
	if err != nil {
		return out, err
	}
	if len(cars) > liveCarLimit {
		cars = cars[:liveCarLimit]
	}
	cards := make([]CarCard, 0, len(cars))
	for _, c := range cars {
		cards = append(cards, carCard(c))
	}
	out = LiveResult[CarCard]{Items: cards, Count: len(cards), Cached: cached}
	if len(cards) == 0 {
		out.Message = fmt.Sprintf("No cars available in %s.", city)
	}
	utils.LogEvent(s.RequestID, "live", "cars", fmt.Sprintf("city=%s cars=%d cached=%t", city, len(cards), cached))
	return out, nil
}

func carCard(c travelapi.Car) CarCard {
	return CarCard{
		CarID:         c.CarID,
		Title:         strings.TrimSpace(c.Brand + " " + c.Name),
		Brand:         c.Brand,
		Name:          c.Name,
		Image:         safe(c.ImageURL, carPlaceholderImage),
		Price:         safe(c.PricingDescription, carPriceUnavailable),
		FinalPrice:    safe(c.FinalPrice, travelapi.NotAvailable),
		Location:      safe(c.MappedLocation, "Unknown Location"),
		VehicleNumber: safe(c.VehicleNumber, travelapi.NotAvailable),
		Accessories:   c.AccessoryTitles(),
	}
}

// cachedFetch serves key from api_data when it is fresh and otherwise calls
// fetch and stores its JSON. Cache failures are logged and never fail the
// request.
func cachedFetch[T any](ctx context.Context, s LiveService, serviceType, key string, fetch func(context.Context) (T, error)) (T, bool, error) {
	log := utils.Logger().With(zap.String("request_id", s.RequestID), zap.String("service_type", serviceType), zap.String("cache_key", key))

	if entry, err := s.Cache.Get(ctx, serviceType, key); err == nil {
		if s.TTL <= 0 || s.now().Sub(entry.CreatedAt) < s.TTL {
			var v T
			if err := json.Unmarshal(entry.Payload, &v); err == nil {
				return v, true, nil
			}
			log.Warn("cached payload is not valid json")
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		return v, false, err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Warn("encode api payload failed", zap.Error(err))
		return v, false, nil
	}
	if err := s.Cache.Put(ctx, serviceType, key, payload); err != nil {
		log.Warn("api cache write failed", zap.Error(err))
	}
	return v, false, nil
}
