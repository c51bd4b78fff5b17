package intent

import (
	"sort"
	"strings"
)

// Category groups intents by the dataset that can answer them.
type Category string

const (
	CategoryFlight    Category = "flight"
	CategoryHotel     Category = "hotel"
	CategoryCarRental Category = "car_rental"
	CategoryAdvisory  Category = "travel_advisory"
	CategoryUnknown   Category = "unknown"
)

// UnknownService is returned for intents outside the service table.
const UnknownService = "Unknown service"

// MinQueryWords is the shortest query the chatbot will try to answer.
const MinQueryWords = 4

var services = map[string]string{
	"flight_booking":            "Book a flight",
	"flight_inquiry":            "Flight availability inquiry",
	"flight_cancellation":       "Cancel a flight",
	"flight_status":             "Check flight status",
	"flight_change":             "Change flight details",
	"hotel_booking":             "Book a hotel",
	"hotel_inquiry":             "Hotel availability inquiry",
	"hotel_cancellation":        "Cancel a hotel reservation",
	"hotel_upgrade":             "Upgrade hotel room",
	"hotel_amenities":           "Inquire about hotel amenities",
	"car_rental":                "Rent a car",
	"car_inquiry":               "Car availability inquiry",
	"car_cancellation":          "Cancel car rental",
	"car_extension":             "Extend car rental period",
	"car_price":                 "Check car rental prices",
	"travel_advisory":           "Get travel advisory information",
	"weather_advisory":          "Get weather advisory",
	"health_advisory":           "Get health advisory",
	"political_unrest_advisory": "Get political unrest advisory",
	"covid_restrictions":        "Get COVID-19 travel restrictions",
}

var categories = map[Category][]string{
	CategoryFlight:    {"flight_booking", "flight_inquiry", "flight_cancellation", "flight_status", "flight_change"},
	CategoryHotel:     {"hotel_booking", "hotel_inquiry", "hotel_cancellation", "hotel_upgrade", "hotel_amenities"},
	CategoryCarRental: {"car_rental", "car_inquiry", "car_cancellation", "car_extension", "car_price"},
	CategoryAdvisory:  {"travel_advisory", "weather_advisory", "health_advisory", "political_unrest_advisory", "covid_restrictions"},
}

var categoryOf = func() map[string]Category {
	out := make(map[string]Category, len(services))
	for c, intents := range categories {
		for _, in := range intents {
			out[in] = c
		}
	}
	return out
}()

// ServiceFor maps an intent label to its human-readable service.
func ServiceFor(intent string) string {
	if s, ok := services[intent]; ok {
		return s
	}
	return UnknownService
}

// CategoryFor maps an intent label to its dataset category.
func CategoryFor(intent string) Category {
	if c, ok := categoryOf[intent]; ok {
		return c
	}
	return CategoryUnknown
}

// Map returns both the service and the category of an intent.
func Map(intent string) (string, Category) {
	return ServiceFor(intent), CategoryFor(intent)
}

// IntentsIn lists the intents that belong to a category.
func IntentsIn(c Category) []string {
	return append([]string(nil), categories[c]...)
}

// Intents lists every known intent label, sorted.
func Intents() []string {
	out := make([]string, 0, len(services))
	for k := range services {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// WordCount counts whitespace separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
