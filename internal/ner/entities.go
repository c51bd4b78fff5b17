package ner

import (
	"regexp"
	"strings"
)

// Entity is one token-classification result, in the shape returned by
// token-classification inference endpoints (BIO tags, "##" wordpieces).
type Entity struct {
	Entity string  `json:"entity"`
	Word   string  `json:"word"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

// IsLocation reports whether the entity carries a location tag.
func (e Entity) IsLocation() bool {
	return e.Entity == "B-LOC" || e.Entity == "I-LOC"
}

var nonWordRe = regexp.MustCompile(`[^\w\s]+`)

// Locations joins location wordpieces back into words and capitalizes them.
// A piece starting with "##" continues the previous word.
func Locations(entities []Entity) []string {
	var out []string
	current := ""
	for _, e := range entities {
		if !e.IsLocation() {
			continue
		}
		word := strings.ReplaceAll(e.Word, "##", "")
		if strings.HasPrefix(e.Word, "##") {
			current += word
			continue
		}
		if current != "" {
			out = append(out, Capitalize(current))
		}
		current = word
	}
	if current != "" {
		out = append(out, Capitalize(current))
	}
	return out
}

// CleanEntities joins wordpieces of all entities, strips non-word
// characters and capitalizes.
func CleanEntities(entities []Entity) []string {
	var out []string
	buffer := ""
	for _, e := range entities {
		word := nonWordRe.ReplaceAllString(strings.ReplaceAll(e.Word, "##", ""), "")
		if buffer != "" && strings.HasPrefix(e.Word, "##") {
			buffer += word
			continue
		}
		if buffer != "" {
			out = append(out, Capitalize(buffer))
		}
		buffer = word
	}
	if buffer != "" {
		out = append(out, Capitalize(buffer))
	}
	return out
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}

// ClassifyEntities labels each entity against the catalog and appends the
// locations that are catalog cities. The result is "Label: Value" pairs
// joined by ", ".
func (c Catalog) ClassifyEntities(entities []string, locations []string) string {
	var out []string
	for _, entity := range entities {
		if label, value := c.classify(entity); label != "" {
			out = append(out, label+": "+value)
		}
	}
	for _, loc := range locations {
		if city := canonical(c.Cities, loc); city != "" {
			out = append(out, "City: "+city)
		}
	}
	return strings.Join(out, ", ")
}

func (c Catalog) classify(entity string) (label, value string) {
	lists := []labelled{
		{"Car Rental Company", c.CarRentalCompanies},
		{"Car Type", c.CarTypes},
		{"Availability Status", c.Availability},
	}
	if label, value = firstList(lists, entity); label != "" {
		return label, value
	}

	lower := strings.ToLower(entity)
	titled := Capitalize(entity)
	switch {
	case containsAny(lower, pickupKeywords):
		return "Pickup/Return Date", titled
	case containsAny(lower, priceKeywords):
		return "Price Per Day", titled
	case containsAny(lower, totalKeywords):
		return "Total Days", titled
	}

	lists = []labelled{
		{"Airline", c.Airlines},
		{"Flight Source", c.FlightSources},
		{"Flight Destination", c.FlightDestinations},
	}
	if label, value = firstList(lists, entity); label != "" {
		return label, value
	}
	switch {
	case containsAny(lower, durationKeywords):
		return "Duration", titled
	case strings.Contains(lower, "total stops"):
		return "Total Stops", titled
	}

	lists = []labelled{
		{"Hotel Name", c.HotelNames},
		{"Room Type", c.RoomTypes},
	}
	if label, value = firstList(lists, entity); label != "" {
		return label, value
	}
	if containsAny(lower, checkInOutKeywords) {
		return "Check-In/Check-Out Date", titled
	}

	lists = []labelled{
		{"Advisory Level", c.AdvisoryLevels},
		{"Advisory Reason", c.AdvisoryReasons},
	}
	if label, value = firstList(lists, entity); label != "" {
		return label, value
	}
	if containsAny(lower, advisoryKeywords) {
		return "Advisory Details", titled
	}
	return "", ""
}

type labelled struct {
	label  string
	values []string
}

func firstList(lists []labelled, entity string) (string, string) {
	for _, l := range lists {
		if v := canonical(l.values, entity); v != "" {
			return l.label, v
		}
	}
	return "", ""
}
