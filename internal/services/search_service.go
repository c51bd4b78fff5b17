package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"travelbot/internal/domain"
	"travelbot/internal/domain/models"
	"travelbot/internal/repositories"
	"travelbot/internal/utils"
)

// SearchService runs the structured dataset queries behind the search
// forms. Every search is logged as a query of the session's user so it
// feeds the recommendations.
type SearchService struct {
	Travel    repositories.TravelRepository
	QueryLog  repositories.QueryLogRepository
	RequestID string
	Limit     int
}

// SearchInput is shared by all dataset searches. From and To are optional
// YYYY-MM-DD bounds; To is only used together with From.
type SearchInput struct {
	Origin      string `form:"origin" json:"origin"`
	Destination string `form:"destination" json:"destination"`
	City        string `form:"city" json:"city"`
	From        string `form:"from" json:"from"`
	To          string `form:"to" json:"to"`
	Limit       int    `form:"limit" json:"limit"`
}

// SearchResult wraps rows with the message shown when none match.
type SearchResult[T any] struct {
	Query   string `json:"query"`
	Rows    []T    `json:"rows"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

func newResult[T any](query string, rows []T, empty string) SearchResult[T] {
	if rows == nil {
		rows = []T{}
	}
	r := SearchResult[T]{Query: query, Rows: rows, Count: len(rows)}
	if len(rows) == 0 {
		r.Message = empty
	}
	return r
}

func (s SearchService) limit(in SearchInput) int {
	max := domain.Limit(s.Limit, 200)
	return domain.Limit(in.Limit, max)
}

func (s SearchService) Flights(ctx context.Context, sess domain.Session, in SearchInput) (SearchResult[models.Flight], error) {
	origin, dest := strings.TrimSpace(in.Origin), strings.TrimSpace(in.Destination)
	if origin == "" || dest == "" {
		return SearchResult[models.Flight]{}, domain.ValidationError{Msg: "Origin and destination cities are required."}
	}
	if strings.EqualFold(origin, dest) {
		return SearchResult[models.Flight]{}, domain.ValidationError{Msg: "Source and Destination cannot be the same."}
	}
	from, to, err := dateBounds(in)
	if err != nil {
		return SearchResult[models.Flight]{}, err
	}

	query := fmt.Sprintf("Show me available flights from %s to %s.", origin, dest)
	s.log(ctx, sess, query, "flight_inquiry", []string{origin, dest}, from)

	rows, err := s.Travel.Flights(ctx, repositories.FlightFilter{
		Source: origin, Destination: dest, From: from, To: to, Limit: s.limit(in),
	})
	if err != nil {
		return SearchResult[models.Flight]{}, domain.InternalError{Msg: "failed to query flights", Err: err}
	}
	return newResult(query, rows, "No flights available for the selected route."), nil
}

// Hotels matches stays overlapping [From, To]: check-in on or before To
// and check-out on or after From.
func (s SearchService) Hotels(ctx context.Context, sess domain.Session, in SearchInput) (SearchResult[models.Hotel], error) {
	city := strings.TrimSpace(in.City)
	if city == "" {
		return SearchResult[models.Hotel]{}, domain.ValidationError{Field: "city", Msg: "city is required"}
	}
	from, to, err := dateBounds(in)
	if err != nil {
		return SearchResult[models.Hotel]{}, err
	}

	query := fmt.Sprintf("Show me available hotels in %s.", city)
	s.log(ctx, sess, query, "hotel_inquiry", []string{city}, from)

	rows, err := s.Travel.Hotels(ctx, repositories.HotelFilter{
		City: city, StayFrom: from, StayTo: to, Limit: s.limit(in),
	})
	if err != nil {
		return SearchResult[models.Hotel]{}, domain.InternalError{Msg: "failed to query hotels", Err: err}
	}
	return newResult(query, rows, "No hotels available in the selected location and date range."), nil
}

func (s SearchService) CarRentals(ctx context.Context, sess domain.Session, in SearchInput) (SearchResult[models.CarRental], error) {
	city := strings.TrimSpace(in.City)
	if city == "" {
		return SearchResult[models.CarRental]{}, domain.ValidationError{Field: "city", Msg: "city is required"}
	}
	from, to, err := dateBounds(in)
	if err != nil {
		return SearchResult[models.CarRental]{}, err
	}

	query := fmt.Sprintf("Show me available car rentals in %s.", city)
	s.log(ctx, sess, query, "car_inquiry", []string{city}, from)

	rows, err := s.Travel.CarRentals(ctx, repositories.CarFilter{
		City: city, PickupFrom: from, PickupTo: to, Limit: s.limit(in),
	})
	if err != nil {
		return SearchResult[models.CarRental]{}, domain.InternalError{Msg: "failed to query car rentals", Err: err}
	}
	return newResult(query, rows, fmt.Sprintf("No car rentals available in %s.", city)), nil
}

func (s SearchService) Advisories(ctx context.Context, sess domain.Session, in SearchInput) (SearchResult[models.Advisory], error) {
	city := strings.TrimSpace(in.City)
	if city == "" {
		return SearchResult[models.Advisory]{}, domain.ValidationError{Field: "city", Msg: "city is required"}
	}

	query := fmt.Sprintf("Show me travel advisories for %s.", city)
	s.log(ctx, sess, query, "travel_advisory", []string{city}, "")

	rows, err := s.Travel.Advisories(ctx, repositories.AdvisoryFilter{City: city, Limit: s.limit(in)})
	if err != nil {
		return SearchResult[models.Advisory]{}, domain.InternalError{Msg: "failed to query advisories", Err: err}
	}
	return newResult(query, rows, fmt.Sprintf("No advisories available in %s.", city)), nil
}

func (s SearchService) log(ctx context.Context, sess domain.Session, query, intentName string, locations []string, date string) {
	_, err := s.QueryLog.Insert(ctx, models.UserQuery{
		UserEmail: sess.Email,
		Query:     query,
		Intent:    intentName,
		Locations: strings.Join(locations, ", "),
		Dates:     date,
	})
	if err != nil {
		utils.Logger().Warn("query log insert failed", zap.String("request_id", s.RequestID), zap.Error(err))
		return
	}
	utils.LogEvent(s.RequestID, "search", intentName, query)
}

// dateBounds validates the optional From/To pair; To without From is dropped.
func dateBounds(in SearchInput) (string, string, error) {
	from, to := strings.TrimSpace(in.From), strings.TrimSpace(in.To)
	if from == "" {
		return "", "", nil
	}
	f, err := utils.ParseDate(from)
	if err != nil {
		return "", "", domain.ValidationError{Field: "from", Msg: "must be YYYY-MM-DD", Err: err}
	}
	if to == "" {
		return from, "", nil
	}
	t, err := utils.ParseDate(to)
	if err != nil {
		return "", "", domain.ValidationError{Field: "to", Msg: "must be YYYY-MM-DD", Err: err}
	}
	if t.Before(f) {
		return "", "", domain.ValidationError{Field: "to", Msg: "must not be before from"}
	}
	return from, to, nil
}
