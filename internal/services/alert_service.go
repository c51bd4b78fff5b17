package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"travelbot/internal/domain"
	"travelbot/internal/travelapi"
	"travelbot/internal/utils"
)

const msgFlightUpdatesFailed = "Failed to fetch flight updates. Please try again later."

// SupportInfo lists the customer support contacts.
type SupportInfo struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LiveChat string `json:"live_chat"`
	FAQ      string `json:"faq"`
}

var Support = SupportInfo{
	Email:    "support@travelchat.com",
	Phone:    "+1-800-555-1234",
	LiveChat: "https://travelchat.com/support",
	FAQ:      "https://travelchat.com/faq",
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var FAQs = []FAQ{
	{"What services does the travel chatbot provide?",
		"Our chatbot assists with flight bookings, hotel reservations, car rentals, and travel advisories."},
	{"How can I check flight updates?",
		"You can select your source and destination airports, along with your travel date, to get real-time flight updates."},
	{"How do I contact customer support?",
		"You can reach us via email, phone, or live chat. Our contact details are provided above."},
	{"Can I cancel my booking through the chatbot?",
		"Yes, you can manage your bookings, including cancellations, by interacting with the chatbot."},
	{"Is there a way to see my booking history?",
		"Yes, you can view your past bookings through the travel history section in the chatbot."},
	{"What should I do if I have an urgent travel issue?",
		"Please contact our customer support team immediately for assistance."},
}

// FAQIndex is an in-memory full-text index over the FAQ entries.
type FAQIndex struct {
	index bleve.Index
	faqs  []FAQ
}

func NewFAQIndex(faqs []FAQ) (*FAQIndex, error) {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = en.AnalyzerName
	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, err
	}
	batch := idx.NewBatch()
	for i, f := range faqs {
		if err := batch.Index(strconv.Itoa(i), f); err != nil {
			_ = idx.Close()
			return nil, err
		}
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return &FAQIndex{index: idx, faqs: faqs}, nil
}

// Search returns the entries matching query, best first. An empty query
// returns every entry.
func (x *FAQIndex) Search(query string, limit int) ([]FAQ, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return x.faqs, nil
	}
	if limit <= 0 {
		limit = len(x.faqs)
	}
	req := bleve.NewSearchRequestOptions(bleve.NewMatchQuery(query), limit, 0, false)
	res, err := x.index.Search(req)
	if err != nil {
		return nil, err
	}
	out := make([]FAQ, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(x.faqs) {
			continue
		}
		out = append(out, x.faqs[i])
	}
	return out, nil
}

func (x *FAQIndex) Close() error {
	return x.index.Close()
}

// AlertService reports flight delays and gate changes and answers support
// questions.
type AlertService struct {
	Amadeus   *travelapi.Amadeus
	FAQ       *FAQIndex
	RequestID string
	Now       func() time.Time
}

type FlightAlertInput struct {
	Source      string `form:"source" json:"source"`
	Destination string `form:"destination" json:"destination"`
	Date        string `form:"date" json:"date"`
}

type DelayedFlight struct {
	FlightNumber string `json:"flight_number"`
	Delay        string `json:"delay"`
	GateChange   string `json:"gate_change"`
}

// AirportReport is the update block of one airport.
type AirportReport struct {
	City            string          `json:"city"`
	Airport         string          `json:"airport"`
	Summary         string          `json:"summary"`
	Heading         string          `json:"heading"`
	DelayCount      int             `json:"delay_count"`
	GateChangeCount int             `json:"gate_change_count"`
	DelayMessage    string          `json:"delay_message"`
	GateMessage     string          `json:"gate_message"`
	Delayed         []DelayedFlight `json:"delayed"`
}

type FlightAlerts struct {
	Date        string        `json:"date"`
	Source      AirportReport `json:"source"`
	Destination AirportReport `json:"destination"`
}

func (s AlertService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// FlightUpdates fetches both airports concurrently. Any upstream failure
// fails the whole report with a single message.
func (s AlertService) FlightUpdates(ctx context.Context, in FlightAlertInput) (FlightAlerts, error) {
	src, ok := travelapi.IATAFor(in.Source)
	if !ok {
		return FlightAlerts{}, domain.ValidationError{Field: "source", Msg: "Invalid city selection. Please select a valid city."}
	}
	dst, ok := travelapi.IATAFor(in.Destination)
	if !ok {
		return FlightAlerts{}, domain.ValidationError{Field: "destination", Msg: "Invalid city selection. Please select a valid city."}
	}
	if src == dst {
		return FlightAlerts{}, domain.ValidationError{Msg: "Source and destination cities cannot be the same."}
	}
	today := utils.FormatDate(s.now())
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = today
	}
	if _, err := utils.ParseDate(date); err != nil {
		return FlightAlerts{}, domain.ValidationError{Field: "date", Msg: "must be YYYY-MM-DD", Err: err}
	}
	if date < today {
		return FlightAlerts{}, domain.ValidationError{Field: "date", Msg: "Travel date cannot be in the past."}
	}
	if s.Amadeus == nil {
		return FlightAlerts{}, domain.UpstreamError{Service: "amadeus", Msg: msgFlightUpdatesFailed}
	}

	var srcUpd, dstUpd travelapi.AirportUpdates
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		srcUpd, err = s.Amadeus.OnTimeFlights(gctx, src, date)
		return err
	})
	g.Go(func() (err error) {
		dstUpd, err = s.Amadeus.OnTimeFlights(gctx, dst, date)
		return err
	})
	if err := g.Wait(); err != nil {
		utils.Logger().Error("flight updates failed", zap.String("request_id", s.RequestID), zap.Error(err))
		return FlightAlerts{}, domain.UpstreamError{Service: "amadeus", Msg: msgFlightUpdatesFailed, Err: err}
	}

	out := FlightAlerts{
		Date:        date,
		Source:      airportReport("Source", travelapi.CityName(src), src, date, srcUpd),
		Destination: airportReport("Destination", travelapi.CityName(dst), dst, date, dstUpd),
	}
	utils.LogEvent(s.RequestID, "alerts", "flight_updates", fmt.Sprintf("%s=%d/%d %s=%d/%d",
		src, srcUpd.DelayCount(), srcUpd.GateChangeCount(), dst, dstUpd.DelayCount(), dstUpd.GateChangeCount()))
	return out, nil
}

func airportReport(role, city, airport, date string, u travelapi.AirportUpdates) AirportReport {
	r := AirportReport{
		City:            city,
		Airport:         airport,
		Summary:         fmt.Sprintf("%s (%s) on %s: Delayed Flights: %d, Gate Changes: %d", role, city, date, u.DelayCount(), u.GateChangeCount()),
		Heading:         fmt.Sprintf("Flight Updates for %s (%s) on %s", city, airport, date),
		DelayCount:      u.DelayCount(),
		GateChangeCount: u.GateChangeCount(),
		Delayed:         make([]DelayedFlight, 0, len(u.Delayed)),
	}
	if r.DelayCount > 0 {
		r.DelayMessage = fmt.Sprintf("%d flights have delays at %s airport.", r.DelayCount, city)
	} else {
		r.DelayMessage = fmt.Sprintf("No flight delays found for %s airport on %s.", city, date)
	}
	if r.GateChangeCount > 0 {
		r.GateMessage = fmt.Sprintf("%d flights have gate changes at %s airport.", r.GateChangeCount, city)
	} else {
		r.GateMessage = fmt.Sprintf("No gate changes found for %s airport.", city)
	}
	for _, f := range u.Delayed {
		r.Delayed = append(r.Delayed, DelayedFlight{
			FlightNumber: f.FlightNumber,
			Delay:        updateValue(f.Delay, "None"),
			GateChange:   updateValue(f.GateChange, "None"),
		})
	}
	return r
}

func updateValue(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return fallback
	}
	return s
}

func (AlertService) Support() SupportInfo {
	return Support
}

// SearchFAQ answers a support question from the FAQ index.
func (s AlertService) SearchFAQ(query string) ([]FAQ, error) {
	if s.FAQ == nil {
		return FAQs, nil
	}
	out, err := s.FAQ.Search(query, 0)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to search faq", Err: err}
	}
	return out, nil
}
