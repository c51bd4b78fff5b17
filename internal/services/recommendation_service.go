package services

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"go.uber.org/zap"

	"travelbot/internal/domain"
	"travelbot/internal/intent"
	"travelbot/internal/repositories"
	"travelbot/internal/travelapi"
	"travelbot/internal/utils"
)

const recommendationsPerSection = 3

// Suggestions are appended at random to each recommendation.
var Suggestions = []string{
	"Explore the local cuisine and make the most of your visit!",
	"Discover hidden gems around your destination.",
	"We recommend checking out historical sites nearby!",
	"Consider upgrading to a premium flight experience.",
	"Why not explore some nearby attractions while you're there?",
	"Try a cultural or adventure activity for a change!",
}

// RecommendationService builds personalized suggestions from the user's
// most frequent searches per category.
type RecommendationService struct {
	Travel          repositories.TravelRepository
	QueryLog        repositories.QueryLogRepository
	Recommendations repositories.RecommendationRepository
	Amadeus         *travelapi.Amadeus
	RequestID       string
	// Intn returns a random int in [0, n); math/rand when nil.
	Intn func(n int) int
}

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type RecommendationItem struct {
	Intro      string  `json:"intro"`
	Fields     []Field `json:"fields"`
	Suggestion string  `json:"suggestion"`
}

// Section is one block of recommendations. Message is set when the
// category had a frequent location but no matching rows.
type Section struct {
	Category intent.Category      `json:"category"`
	Location string               `json:"location"`
	Heading  string               `json:"heading"`
	Items    []RecommendationItem `json:"items"`
	Message  string               `json:"message,omitempty"`
}

type Recommendations struct {
	Greeting     string               `json:"greeting"`
	Sections     []Section            `json:"sections"`
	General      []RecommendationItem `json:"general"`
	GeneralNote  string               `json:"general_message,omitempty"`
	Destinations []travelapi.Location `json:"destinations,omitempty"`
}

func (s RecommendationService) suggestion() string {
	intn := s.Intn
	if intn == nil {
		intn = rand.Intn
	}
	return Suggestions[intn(len(Suggestions))]
}

// For builds the recommendations of the session's user.
func (s RecommendationService) For(ctx context.Context, sess domain.Session) (Recommendations, error) {
	if err := requireSession(sess); err != nil {
		return Recommendations{}, err
	}
	out := Recommendations{
		Greeting: fmt.Sprintf("Hello %s! Based on your frequent searches, I have some personalized travel recommendations for you.",
			safe(sess.Name, sess.Email)),
		Sections: []Section{},
		General:  []RecommendationItem{},
	}

	builders := []struct {
		category intent.Category
		build    func(context.Context, string) (Section, error)
	}{
		{intent.CategoryFlight, s.flightSection},
		{intent.CategoryHotel, s.hotelSection},
		{intent.CategoryCarRental, s.carSection},
		{intent.CategoryAdvisory, s.advisorySection},
	}
	var flightLocation string
	for _, b := range builders {
		loc, err := s.QueryLog.MostCommonLocation(ctx, intent.IntentsIn(b.category), sess.Email)
		if err != nil {
			return Recommendations{}, domain.InternalError{Msg: "failed to read query history", Err: err}
		}
		if loc == "" {
			continue
		}
		if b.category == intent.CategoryFlight {
			flightLocation = loc
		}
		sec, err := b.build(ctx, loc)
		if err != nil {
			return Recommendations{}, domain.InternalError{Msg: "failed to query travel data", Err: err}
		}
		sec.Category, sec.Location = b.category, loc
		if sec.Items == nil {
			sec.Items = []RecommendationItem{}
		}
		out.Sections = append(out.Sections, sec)
	}

	recs, err := s.Recommendations.Random(ctx, recommendationsPerSection)
	if err != nil {
		return Recommendations{}, domain.InternalError{Msg: "failed to load recommendations", Err: err}
	}
	for _, r := range recs {
		out.General = append(out.General, RecommendationItem{
			Intro: "I have a few more general recommendations for you:",
			Fields: []Field{
				{"Location", r.Locations},
				{"Intent", r.Intent},
				{"Details", r.Recommendation},
			},
			Suggestion: s.suggestion(),
		})
	}
	if len(out.General) == 0 {
		out.GeneralNote = "No additional general recommendations at the moment."
	}

	out.Destinations = s.destinations(ctx, flightLocation)
	utils.LogEvent(s.RequestID, "recommendations", "build",
		fmt.Sprintf("sections=%d general=%d", len(out.Sections), len(out.General)))
	return out, nil
}

func (s RecommendationService) flightSection(ctx context.Context, loc string) (Section, error) {
	f := repositories.FlightFilter{Limit: recommendationsPerSection}
	var sec Section
	var intro string
	if origin, dest, ok := strings.Cut(loc, ", "); ok {
		f.Source, f.Destination = origin, dest
		sec.Heading = fmt.Sprintf("Flight Recommendations from %s to %s:", origin, dest)
		sec.Message = fmt.Sprintf("Sorry, no flights found from %s to %s.", origin, dest)
		intro = fmt.Sprintf("It looks like you're frequently flying from **%s** to **%s**! Here's a recommendation:", origin, dest)
	} else {
		f.Destination = loc
		sec.Heading = fmt.Sprintf("Flight Recommendations for %s:", loc)
		sec.Message = fmt.Sprintf("Sorry, no flights to %s found in the current database.", loc)
		intro = fmt.Sprintf("It looks like you're frequently flying to **%s**! Here's a recommendation:", loc)
	}
	rows, err := s.Travel.Flights(ctx, f)
	if err != nil {
		return Section{}, err
	}
	if len(rows) > 0 {
		sec.Message = ""
	}
	for _, fl := range rows {
		sec.Items = append(sec.Items, RecommendationItem{
			Intro: intro,
			Fields: []Field{
				{"Airline", fl.Airline},
				{"Route", fl.Source + " to " + fl.Destination},
				{"Date", fl.DateOfJourney},
				{"Price", utils.FormatRupees(int64(fl.Price))},
				{"Duration", fl.Duration},
				{"Stops", fl.TotalStops},
				{"Arrival Time", fl.ArrivalTime},
			},
			Suggestion: s.suggestion(),
		})
	}
	return sec, nil
}

func (s RecommendationService) hotelSection(ctx context.Context, loc string) (Section, error) {
	rows, err := s.Travel.Hotels(ctx, repositories.HotelFilter{City: loc, Limit: recommendationsPerSection})
	if err != nil {
		return Section{}, err
	}
	sec := Section{Heading: fmt.Sprintf("Hotel Recommendations for %s:", loc)}
	if len(rows) == 0 {
		sec.Message = fmt.Sprintf("No hotels found in %s.", loc)
	}
	for _, h := range rows {
		sec.Items = append(sec.Items, RecommendationItem{
			Intro: fmt.Sprintf("Since you've been looking for hotels in **%s**, I recommend the following option:", loc),
			Fields: []Field{
				{"Hotel Name", h.HotelName},
				{"Room Type", h.RoomType},
				{"Price", utils.FormatRupees(int64(h.PricePerNight)) + " per night"},
				{"Check-In", h.CheckInDate},
				{"Availability", h.AvailabilityStatus},
			},
			Suggestion: s.suggestion(),
		})
	}
	return sec, nil
}

func (s RecommendationService) carSection(ctx context.Context, loc string) (Section, error) {
	rows, err := s.Travel.CarRentals(ctx, repositories.CarFilter{City: loc, Limit: recommendationsPerSection})
	if err != nil {
		return Section{}, err
	}
	sec := Section{Heading: fmt.Sprintf("Car Rental Recommendations for %s:", loc)}
	if len(rows) == 0 {
		sec.Message = fmt.Sprintf("No car rentals found in %s.", loc)
	}
	for _, c := range rows {
		sec.Items = append(sec.Items, RecommendationItem{
			Intro: fmt.Sprintf("For car rentals in **%s**, you might like this:", loc),
			Fields: []Field{
				{"Rental Company", c.Company},
				{"Car Type", c.CarType},
				{"Price", utils.FormatRupees(int64(c.PricePerDay)) + " per day"},
				{"Pick-Up Date", c.PickupDate},
			},
			Suggestion: s.suggestion(),
		})
	}
	return sec, nil
}

func (s RecommendationService) advisorySection(ctx context.Context, loc string) (Section, error) {
	rows, err := s.Travel.Advisories(ctx, repositories.AdvisoryFilter{City: loc, Limit: recommendationsPerSection})
	if err != nil {
		return Section{}, err
	}
	sec := Section{Heading: fmt.Sprintf("Travel Advisories for %s:", loc)}
	if len(rows) == 0 {
		sec.Message = fmt.Sprintf("No travel advisories found for %s.", loc)
	}
	for _, a := range rows {
		sec.Items = append(sec.Items, RecommendationItem{
			Intro: fmt.Sprintf("Here are some important advisories for **%s**:", loc),
			Fields: []Field{
				{"Advisory Level", a.AdvisoryLevel},
				{"Reason", a.Reason},
				{"Affected Routes", a.AffectedRoutes},
				{"Validity", a.Validity},
			},
			Suggestion: s.suggestion(),
		})
	}
	return sec, nil
}

// destinations asks Amadeus for destinations popular with Indian travelers
// from the user's most searched flight city. Failures only log.
func (s RecommendationService) destinations(ctx context.Context, flightLocation string) []travelapi.Location {
	if s.Amadeus == nil || !s.Amadeus.Configured() || flightLocation == "" {
		return nil
	}
	city := flightLocation
	if origin, _, ok := strings.Cut(flightLocation, ", "); ok {
		city = origin
	}
	code, ok := travelapi.IATAFor(city)
	if !ok {
		return nil
	}
	locs, err := s.Amadeus.RecommendedLocations(ctx, code, "IN", "")
	if err != nil {
		utils.Logger().Warn("recommended locations failed", zap.String("request_id", s.RequestID), zap.Error(err))
		return nil
	}
	return locs
}
