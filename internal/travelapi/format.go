package travelapi

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"travelbot/internal/utils"
)

// Cities is the set of cities live searches support, in display order.
var Cities = []string{"Mumbai", "Delhi", "Bangalore", "Hyderabad", "Chennai", "Kolkata", "Pune", "Jaipur"}

var cityIATA = map[string]string{
	"Mumbai":    "BOM",
	"Delhi":     "DEL",
	"Bangalore": "BLR",
	"Hyderabad": "HYD",
	"Chennai":   "MAA",
	"Kolkata":   "CCU",
	"Pune":      "PNQ",
	"Jaipur":    "JAI",
}

var airlineNames = map[string]string{
	"AI": "Air India",
	"6E": "IndiGo",
	"SG": "SpiceJet",
	"UK": "Vistara",
}

var locationNames = map[int]string{
	10: "Mumbai",
	11: "Delhi",
	12: "Bangalore",
	13: "Hyderabad",
	14: "Chennai",
	15: "Kolkata",
	16: "Pune",
	17: "Jaipur",
	18: "Goa",
	19: "Ahmedabad",
	20: "Surat",
	21: "Lucknow",
	22: "Kanpur",
	23: "Varanasi",
	24: "Agra",
	25: "Shimla",
	26: "Manali",
}

// IATAFor returns the airport code of a supported city, ignoring case.
func IATAFor(city string) (string, bool) {
	city = strings.TrimSpace(city)
	for name, code := range cityIATA {
		if strings.EqualFold(name, city) {
			return code, true
		}
	}
	return "", false
}

// CityName maps an airport code back to its city, or returns the code.
func CityName(code string) string {
	for name, c := range cityIATA {
		if c == code {
			return name
		}
	}
	return code
}

// AirlineName maps a carrier code to its name, or returns the code.
func AirlineName(code string) string {
	if name, ok := airlineNames[code]; ok {
		return name
	}
	return code
}

// LocationName maps a ZoomCar location id to a city.
func LocationName(id int) string {
	if name, ok := locationNames[id]; ok {
		return name
	}
	return "Unknown Location"
}

var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration parses ISO-8601 durations of the form PnDTnHnMnS.
func ParseDuration(iso string) (time.Duration, error) {
	m := isoDurationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(iso)))
	if m == nil || iso == "P" || iso == "PT" {
		return 0, fmt.Errorf("invalid duration %q", iso)
	}
	var d time.Duration
	units := []time.Duration{24 * time.Hour, time.Hour, time.Minute}
	for i, u := range units {
		if m[i+1] == "" {
			continue
		}
		n, _ := strconv.Atoi(m[i+1])
		d += time.Duration(n) * u
	}
	if m[4] != "" {
		s, _ := strconv.ParseFloat(m[4], 64)
		d += time.Duration(s * float64(time.Second))
	}
	return d, nil
}

// HoursMinutes renders a duration as "Xh Ym".
func HoursMinutes(d time.Duration) string {
	total := int(d / time.Minute)
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}

// FormatDuration renders an ISO-8601 duration as "Xh Ym"; days fold into hours.
func FormatDuration(iso string) string {
	d, err := ParseDuration(iso)
	if err != nil {
		return iso
	}
	return HoursMinutes(d)
}

// ToINR converts a euro amount string to rupees.
func ToINR(eur string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(eur), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", eur, err)
	}
	return v * utils.EURToINR, nil
}

var localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.RFC3339}

// ParseLocal parses the timezone-less timestamps Amadeus uses for
// departures and arrivals.
func ParseLocal(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// Clock renders a timestamp as HH:MM, or returns it unchanged.
func Clock(s string) string {
	t, err := ParseLocal(s)
	if err != nil {
		return s
	}
	return t.Format("15:04")
}

// Layover is the wait between an arrival and the next departure.
func Layover(arrival, departure string) string {
	a, err1 := ParseLocal(arrival)
	d, err2 := ParseLocal(departure)
	if err1 != nil || err2 != nil {
		return "unknown"
	}
	return HoursMinutes(d.Sub(a))
}

// SegmentCard is one leg of a flight card.
type SegmentCard struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}

// FlightCard is the display form of one itinerary of an offer.
type FlightCard struct {
	Airline     string        `json:"airline"`
	AirlineCode string        `json:"airlineCode"`
	Price       string        `json:"price"`
	PriceINR    float64       `json:"priceInr"`
	Departure   string        `json:"departure"`
	Arrival     string        `json:"arrival"`
	Duration    string        `json:"duration"`
	Stops       int           `json:"stops"`
	StopsLabel  string        `json:"stopsLabel"`
	Layovers    []string      `json:"layovers"`
	Classes     string        `json:"classes"`
	Segments    []SegmentCard `json:"segments"`
}

// FlightCards flattens offers into one card per itinerary. At most limit
// offers are used; zero means all.
func FlightCards(offers []FlightOffer, limit int) []FlightCard {
	if limit > 0 && len(offers) > limit {
		offers = offers[:limit]
	}
	cards := []FlightCard{}
	for _, o := range offers {
		code := ""
		if len(o.ValidatingAirlineCodes) > 0 {
			code = o.ValidatingAirlineCodes[0]
		}
		price, priceLabel := 0.0, o.Price.Total
		if v, err := ToINR(o.Price.Total); err == nil {
			price, priceLabel = v, utils.FormatINR(v)
		}
		cabins := fareCabins(o)
		for _, it := range o.Itineraries {
			if len(it.Segments) == 0 {
				continue
			}
			cards = append(cards, itineraryCard(it, code, price, priceLabel, cabins))
		}
	}
	return cards
}

func itineraryCard(it Itinerary, code string, price float64, priceLabel string, cabins []string) FlightCard {
	segs := it.Segments
	card := FlightCard{
		Airline:     AirlineName(code),
		AirlineCode: code,
		Price:       priceLabel,
		PriceINR:    price,
		Departure:   CityName(segs[0].Departure.IATACode),
		Arrival:     CityName(segs[len(segs)-1].Arrival.IATACode),
		Duration:    FormatDuration(it.Duration),
		Stops:       len(segs) - 1,
		Layovers:    []string{},
	}
	if card.Stops > 0 {
		card.StopsLabel = fmt.Sprintf("%d stop(s)", card.Stops)
	} else {
		card.StopsLabel = "Non-stop flight"
	}

	classes := map[string]bool{}
	for i, s := range segs {
		if s.Cabin != "" {
			classes[s.Cabin] = true
		}
		card.Segments = append(card.Segments, SegmentCard{
			From:      CityName(s.Departure.IATACode),
			To:        CityName(s.Arrival.IATACode),
			Departure: Clock(s.Departure.At),
			Arrival:   Clock(s.Arrival.At),
		})
		if i < len(segs)-1 {
			card.Layovers = append(card.Layovers, fmt.Sprintf("Layover at %s for %s",
				CityName(s.Arrival.IATACode), Layover(s.Arrival.At, segs[i+1].Departure.At)))
		}
	}
	if len(classes) == 0 {
		for _, c := range cabins {
			classes[c] = true
		}
	}
	card.Classes = "Unavailable"
	if len(classes) > 0 {
		names := make([]string, 0, len(classes))
		for c := range classes {
			names = append(names, c)
		}
		sort.Strings(names)
		card.Classes = strings.Join(names, ", ")
	}
	return card
}

func fareCabins(o FlightOffer) []string {
	var out []string
	for _, tp := range o.TravelerPricings {
		for _, fd := range tp.FareDetailsBySegment {
			if fd.Cabin != "" {
				out = append(out, fd.Cabin)
			}
		}
	}
	return out
}
