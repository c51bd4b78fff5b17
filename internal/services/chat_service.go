package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"travelbot/internal/dateparse"
	"travelbot/internal/domain"
	"travelbot/internal/domain/models"
	"travelbot/internal/intent"
	"travelbot/internal/ner"
	"travelbot/internal/repositories"
	"travelbot/internal/utils"
)

const msgShortQuery = "Please enter a more detailed query (at least 4 words)."

// ChatService answers free-text travel queries: intent, entities, dates,
// a composed reply and the matching dataset rows.
type ChatService struct {
	Classifier intent.Classifier
	Tagger     ner.Tagger
	Catalog    ner.Catalog
	Travel     repositories.TravelRepository
	QueryLog   repositories.QueryLogRepository
	RequestID  string
	Now        func() time.Time
	Limit      int
}

// DatasetResult holds the rows found for the query's category. Only the
// slice matching Kind is populated.
type DatasetResult struct {
	Kind       intent.Category    `json:"kind"`
	Flights    []models.Flight    `json:"flights,omitempty"`
	Hotels     []models.Hotel     `json:"hotels,omitempty"`
	CarRentals []models.CarRental `json:"car_rentals,omitempty"`
	Advisories []models.Advisory  `json:"advisories,omitempty"`
}

// Count is the number of rows found.
func (r DatasetResult) Count() int {
	return len(r.Flights) + len(r.Hotels) + len(r.CarRentals) + len(r.Advisories)
}

// Analysis is the full answer to one chat query.
type Analysis struct {
	Query      string          `json:"query"`
	Intent     string          `json:"intent"`
	Confidence float64         `json:"confidence"`
	Service    string          `json:"service"`
	Category   intent.Category `json:"category"`
	Locations  []string        `json:"locations"`
	Entities   []string        `json:"entities"`
	Classified string          `json:"classified_entities"`
	Dates      []string        `json:"dates"`
	Reply      string          `json:"reply"`
	Results    DatasetResult   `json:"results"`
	Summary    Summary         `json:"summary"`
}

// Summary is the one-row "detected information" table.
type Summary struct {
	PredictedIntent    string `json:"predicted_intent"`
	MappedService      string `json:"mapped_service"`
	ExtractedEntities  string `json:"extracted_entities"`
	ExtractedLocations string `json:"extracted_locations"`
	ExtractedDates     string `json:"extracted_dates"`
}

func (s ChatService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s ChatService) limit() int {
	return domain.Limit(s.Limit, 50)
}

func (s ChatService) catalog() ner.Catalog {
	if len(s.Catalog.Cities) == 0 {
		return ner.DefaultCatalog
	}
	return s.Catalog
}

// Analyze classifies the query, extracts locations, entities and dates,
// logs it for the session's user and looks up matching dataset rows.
func (s ChatService) Analyze(ctx context.Context, sess domain.Session, query string) (Analysis, error) {
	query = utils.NormalizeSpace(query)
	if intent.WordCount(query) < intent.MinQueryWords {
		return Analysis{}, domain.ValidationError{Msg: msgShortQuery}
	}
	if s.Classifier == nil {
		return Analysis{}, domain.InternalError{Msg: "intent model is not loaded"}
	}

	pred, err := s.Classifier.Predict(query)
	if err != nil {
		return Analysis{}, domain.InternalError{Msg: "failed to classify query", Err: err}
	}
	service, category := intent.Map(pred.Intent)

	var entities []ner.Entity
	if s.Tagger != nil {
		entities, err = s.Tagger.Tag(ctx, query)
		if err != nil {
			utils.Logger().Warn("entity tagging failed", zap.String("request_id", s.RequestID), zap.Error(err))
		}
	}
	cat := s.catalog()
	locations := ner.Locations(entities)
	if len(locations) == 0 {
		locations = cat.Find(query).Cities
	}
	cleaned := ner.CleanEntities(entities)
	mentions := dateparse.Parse(query, s.now())

	a := Analysis{
		Query:      query,
		Intent:     pred.Intent,
		Confidence: pred.Confidence,
		Service:    service,
		Category:   category,
		Locations:  nonNil(locations),
		Entities:   nonNil(cleaned),
		Classified: cat.ClassifyEntities(cleaned, locations),
		Dates:      nonNil(dateparse.Labels(mentions)),
		Results:    DatasetResult{Kind: category},
	}

	if _, err := s.QueryLog.Insert(ctx, models.UserQuery{
		UserEmail: sess.Email,
		Query:     query,
		Intent:    pred.Intent,
		Locations: strings.Join(locations, ", "),
		Dates:     strings.Join(startDates(mentions), ", "),
		CreatedAt: s.now(),
	}); err != nil {
		utils.Logger().Warn("query log insert failed", zap.String("request_id", s.RequestID), zap.Error(err))
	}

	notice, err := s.lookup(ctx, &a, query, mentions)
	if err != nil {
		return Analysis{}, domain.InternalError{Msg: "failed to query travel data", Err: err}
	}
	a.Reply = composeReply(a, mentions, notice)
	a.Summary = Summary{
		PredictedIntent:    a.Intent,
		MappedService:      a.Service,
		ExtractedEntities:  strings.Join(a.Entities, ", "),
		ExtractedLocations: strings.Join(a.Locations, ", "),
		ExtractedDates:     strings.Join(a.Dates, ", "),
	}
	utils.LogEvent(s.RequestID, "chat", "analyze",
		fmt.Sprintf("intent=%s category=%s rows=%d", a.Intent, a.Category, a.Results.Count()))
	return a, nil
}

// lookup queries the dataset for the analysis category and returns the
// sentence appended to the reply when nothing could be found.
func (s ChatService) lookup(ctx context.Context, a *Analysis, query string, mentions []dateparse.Mention) (string, error) {
	m := s.catalog().Find(query)
	locs := a.Locations
	limit := s.limit()

	switch {
	case a.Category == intent.CategoryFlight && len(locs) >= 2:
		f := repositories.FlightFilter{Source: locs[0], Destination: locs[1], Airline: m.Airline, Limit: limit}
		if len(mentions) > 0 {
			f.Month = mentions[0].Start.Format("2006-01")
		}
		rows, err := s.Travel.Flights(ctx, f)
		if err != nil {
			return "", err
		}
		a.Results.Flights = rows
		if len(rows) == 0 {
			return "No flights found for the given criteria.", nil
		}

	case a.Category == intent.CategoryHotel && len(locs) >= 1:
		f := repositories.HotelFilter{City: locs[0], RoomType: m.RoomType, Limit: limit}
		f.CheckInFrom, f.CheckInTo = dateWindow(mentions)
		rows, err := s.Travel.Hotels(ctx, f)
		if err != nil {
			return "", err
		}
		a.Results.Hotels = rows
		if len(rows) == 0 {
			return "No hotels found for the given criteria.", nil
		}

	case a.Category == intent.CategoryCarRental && len(locs) >= 1:
		f := repositories.CarFilter{City: locs[0], CarType: m.CarType, Limit: limit}
		if len(mentions) > 0 {
			if mentions[0].SingleDay() {
				f.PickupDate = dateparse.Format(mentions[0].Start)
			} else {
				f.PickupFrom, f.PickupTo = dateparse.Format(mentions[0].Start), dateparse.Format(mentions[0].End)
			}
		}
		rows, err := s.Travel.CarRentals(ctx, f)
		if err != nil {
			return "", err
		}
		a.Results.CarRentals = rows
		if len(rows) == 0 {
			return fmt.Sprintf("No car rentals found in %s.", locs[0]), nil
		}

	case a.Category == intent.CategoryAdvisory && len(locs) >= 1:
		rows, err := s.Travel.Advisories(ctx, repositories.AdvisoryFilter{City: locs[0], Limit: limit})
		if err != nil {
			return "", err
		}
		a.Results.Advisories = rows
		if len(rows) == 0 {
			return "No advisories found for the given location.", nil
		}

	default:
		return "Sorry, I couldn't find enough information to answer your query.", nil
	}
	return "", nil
}

// dateWindow picks a check-in window: the first two mentioned dates, or the
// span of a single multi-day mention such as "next week".
func dateWindow(mentions []dateparse.Mention) (string, string) {
	switch {
	case len(mentions) >= 2:
		from, to := mentions[0].Start, mentions[1].Start
		if to.Before(from) {
			from, to = to, from
		}
		return dateparse.Format(from), dateparse.Format(to)
	case len(mentions) == 1 && !mentions[0].SingleDay():
		return dateparse.Format(mentions[0].Start), dateparse.Format(mentions[0].End)
	}
	return "", ""
}

func composeReply(a Analysis, mentions []dateparse.Mention, notice string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you! You are interested in **%s** (Intent: %s).", a.Service, a.Intent)
	if len(a.Locations) > 0 {
		fmt.Fprintf(&b, " You've mentioned the following **locations**: %s.", utils.JoinBold(a.Locations))
	}
	if len(mentions) > 0 {
		parts := make([]string, len(mentions))
		for i, m := range mentions {
			parts[i] = fmt.Sprintf("**%s** (%s)", m.Text, m.Kind)
		}
		fmt.Fprintf(&b, " The **date(s)** you've mentioned: %s.", strings.Join(parts, ", "))
	} else {
		b.WriteString(" No valid dates were identified.")
	}
	if len(a.Entities) > 0 {
		fmt.Fprintf(&b, " The **entities** identified are: %s.", strings.Join(a.Entities, ", "))
	}
	if n := a.Results.Count(); n > 0 {
		fmt.Fprintf(&b, " I found %d matching record(s).", n)
	}
	if notice != "" {
		b.WriteString(" " + notice)
	}
	return b.String()
}

func startDates(mentions []dateparse.Mention) []string {
	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		out = append(out, dateparse.Format(m.Start))
	}
	return out
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

var chatExamples = map[string][]string{
	"Flight": {
		"Can you help me book a flight from Mumbai to Delhi on 2024-12-12?",
		"What is the status of flight AI202 from Kolkata to Chennai?",
		"I need to cancel my flight to Bangalore.",
		"Can I change my flight from Hyderabad to Jaipur in January ?",
		"I want to book a flight from Chennai to Pune on next Monday",
	},
	"Hotel": {
		"I'd like to book a Deluxe room in Chennai for next weekend.",
		"Are there any available hotels in Bangalore from March 5 to March 10, 2025?",
		"Can I upgrade my room at the hotel in Pune?",
		"What amenities does the hotel in Jaipur offer?",
		"I need to cancel my hotel reservation in Kolkata.",
	},
	"Car Rental": {
		"Can I rent an SUV in Delhi on February 15, 2025?",
		"What is the price for a Luxury car rental in Mumbai?",
		"Is a Sedan available for rent in Chennai?",
		"Can I extend my Hatchback rental in Bangalore for another week?",
		"Are luxury cars available for rent in Hyderabad?",
	},
	"Travel Advisory": {
		"What are the travel advisories for Pune?",
		"Is there a weather advisory for Delhi?",
		"Are there any health advisories for Kolkata?",
		"Is there political unrest in Jaipur?",
		"What are the COVID restrictions in Mumbai?",
	},
}

// ExampleServices lists the service names Examples accepts.
var ExampleServices = []string{"Flight", "Hotel", "Car Rental", "Travel Advisory"}

// Examples returns sample queries for a service, matched case-insensitively.
func (ChatService) Examples(service string) ([]string, error) {
	for _, name := range ExampleServices {
		if strings.EqualFold(name, strings.TrimSpace(service)) {
			return chatExamples[name], nil
		}
	}
	return nil, domain.ValidationError{Field: "service", Msg: "must be one of " + strings.Join(ExampleServices, ", ")}
}
