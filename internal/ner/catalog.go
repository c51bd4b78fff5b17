package ner

import (
	"regexp"
	"strings"
)

// Catalog lists the values found in the travel datasets. Entity
// classification and the offline tagger both match against it.
type Catalog struct {
	CarRentalCompanies []string
	CarTypes           []string
	Cities             []string
	Availability       []string
	FlightSources      []string
	FlightDestinations []string
	Airlines           []string
	HotelNames         []string
	RoomTypes          []string
	AdvisoryLevels     []string
	AdvisoryReasons    []string
}

// DefaultCatalog mirrors the synthetic datasets.
var DefaultCatalog = Catalog{
	CarRentalCompanies: []string{"Hertz", "ZoomCar", "Carzonrent", "Drivezy", "Avis"},
	CarTypes:           []string{"Convertible", "SUV", "Luxury", "Sedan", "Hatchback"},
	Cities:             []string{"Hyderabad", "Bangalore", "Mumbai", "Pune", "Delhi", "Chennai", "Jaipur", "Kolkata", "Goa"},
	Availability:       []string{"Booked", "Available", "Fully Booked"},
	FlightSources:      []string{"Jaipur", "Chennai", "Delhi", "Mumbai", "Kolkata"},
	FlightDestinations: []string{"Chennai", "Pune", "Bangalore", "Mumbai", "Kolkata"},
	Airlines:           []string{"Air India", "IndiGo", "SpiceJet", "Vistara"},
	HotelNames:         []string{"Ocean View", "City Inn", "Mountain Lodge", "Hilltop"},
	RoomTypes:          []string{"Deluxe", "Double", "Single", "Suite"},
	AdvisoryLevels:     []string{"Low", "Severe", "High", "Moderate"},
	AdvisoryReasons:    []string{"Political unrest", "Weather", "Security concerns", "Health advisory"},
}

var (
	priceKeywords      = []string{"price", "cost", "rate"}
	durationKeywords   = []string{"duration", "time"}
	pickupKeywords     = []string{"pickup date", "return date"}
	checkInOutKeywords = []string{"check-in", "check-out"}
	totalKeywords      = []string{"total days", "total nights"}
	advisoryKeywords   = []string{"advisory", "affected routes", "validity"}
)

// Matches are catalog values found verbatim in a query.
type Matches struct {
	Airline  string
	RoomType string
	CarType  string
	Hotel    string
	Company  string
	Cities   []string
}

// Find scans text for catalog values, case-insensitively on word
// boundaries. The first hit of each kind wins; cities keep text order.
func (c Catalog) Find(text string) Matches {
	var m Matches
	m.Airline = firstIn(text, c.Airlines)
	m.RoomType = firstIn(text, c.RoomTypes)
	m.CarType = firstIn(text, c.CarTypes)
	m.Hotel = firstIn(text, c.HotelNames)
	m.Company = firstIn(text, c.CarRentalCompanies)

	type hit struct {
		pos  int
		city string
	}
	var hits []hit
	for _, city := range c.Cities {
		if loc := wordRe(city).FindStringIndex(text); loc != nil {
			hits = append(hits, hit{loc[0], city})
		}
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	for _, h := range hits {
		m.Cities = append(m.Cities, h.city)
	}
	return m
}

// IsCity reports whether name is a catalog city, ignoring case.
func (c Catalog) IsCity(name string) bool {
	return containsFold(c.Cities, name)
}

func firstIn(text string, values []string) string {
	best, bestPos := "", -1
	for _, v := range values {
		loc := wordRe(v).FindStringIndex(text)
		if loc == nil {
			continue
		}
		if bestPos < 0 || loc[0] < bestPos {
			best, bestPos = v, loc[0]
		}
	}
	return best
}

func wordRe(v string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(v) + `\b`)
}

func containsFold(values []string, v string) bool {
	return canonical(values, v) != ""
}

// canonical returns the catalog spelling of v, or "" when absent.
func canonical(values []string, v string) string {
	v = strings.TrimSpace(v)
	for _, x := range values {
		if strings.EqualFold(x, v) {
			return x
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
