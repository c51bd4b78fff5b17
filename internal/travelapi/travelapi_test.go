package travelapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"travelbot/internal/config"
	"travelbot/internal/domain"
)

func newAmadeusServer(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		if err := r.ParseForm(); err != nil || r.Form.Get("grant_type") != "client_credentials" || r.Form.Get("client_id") != "id" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 1799})
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		q := r.URL.Query()
		if q.Get("originLocationCode") != "BOM" || q.Get("adults") != "1" || q.Get("travelClass") != "ECONOMY" || q.Get("max") != "10" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"validatingAirlineCodes":["6E"],"price":{"total":"50.00","currency":"EUR"},
			"itineraries":[{"duration":"PT4H35M","segments":[
				{"departure":{"iataCode":"BOM","at":"2025-01-10T06:00:00"},"arrival":{"iataCode":"BLR","at":"2025-01-10T07:45:00"},"cabin":"ECONOMY"},
				{"departure":{"iataCode":"BLR","at":"2025-01-10T08:55:00"},"arrival":{"iataCode":"DEL","at":"2025-01-10T10:35:00"}}]}]}]}`))
	})
	mux.HandleFunc("/v1/reference-data/locations/hotels/by-city", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("cityCode") != "DEL" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"name":"HOTEL ONE","hotelId":"HTDEL001","address":{"countryCode":"IN"}}]}`))
	})
	mux.HandleFunc("/ontime", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"flights":[
			{"flightNumber":"AI1","delay":15},
			{"flightNumber":"AI2","gateChange":"B4"},
			{"flightNumber":"AI3","delay":0}]}`))
	})
	return httptest.NewServer(mux)
}

func newTestAmadeus(url string) *Amadeus {
	return NewAmadeus(config.AmadeusConfig{
		BaseURL:      url,
		OnTimeURL:    url + "/ontime",
		ClientID:     "id",
		ClientSecret: "secret",
	})
}

func TestAmadeusTokenIsCached(t *testing.T) {
	var calls int32
	srv := newAmadeusServer(t, &calls)
	defer srv.Close()

	a := newTestAmadeus(srv.URL)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := a.Token(ctx); err != nil {
			t.Fatalf("Token: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("token requested %d times, want 1", calls)
	}

	a.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := a.Token(ctx); err != nil {
		t.Fatalf("Token after expiry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expired token was not renewed, calls = %d", calls)
	}
}

func TestAmadeusUnconfigured(t *testing.T) {
	a := NewAmadeus(config.AmadeusConfig{BaseURL: "http://127.0.0.1:1"})
	_, err := a.Token(context.Background())
	if !domain.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestFlightOffersAndCards(t *testing.T) {
	var calls int32
	srv := newAmadeusServer(t, &calls)
	defer srv.Close()

	offers, err := newTestAmadeus(srv.URL).FlightOffers(context.Background(), FlightQuery{
		Origin: "BOM", Destination: "DEL", DepartureDate: "2025-01-10",
	})
	if err != nil {
		t.Fatalf("FlightOffers: %v", err)
	}
	cards := FlightCards(offers, 10)
	if len(cards) != 1 {
		t.Fatalf("expected one card, got %d", len(cards))
	}
	c := cards[0]
	if c.Airline != "IndiGo" || c.Price != "5500.00 INR" || c.Duration != "4h 35m" {
		t.Fatalf("unexpected card header: %+v", c)
	}
	if c.Stops != 1 || c.StopsLabel != "1 stop(s)" || c.Classes != "ECONOMY" {
		t.Fatalf("unexpected stops/classes: %+v", c)
	}
	if diff := cmp.Diff([]string{"Layover at Bangalore for 1h 10m"}, c.Layovers); diff != "" {
		t.Fatalf("layovers mismatch (-want +got):\n%s", diff)
	}
	want := SegmentCard{From: "Mumbai", To: "Bangalore", Departure: "06:00", Arrival: "07:45"}
	if diff := cmp.Diff(want, c.Segments[0]); diff != "" {
		t.Fatalf("segment mismatch (-want +got):\n%s", diff)
	}
	if c.Departure != "Mumbai" || c.Arrival != "Delhi" {
		t.Fatalf("unexpected endpoints: %s -> %s", c.Departure, c.Arrival)
	}
}

func TestHotelsByCity(t *testing.T) {
	var calls int32
	srv := newAmadeusServer(t, &calls)
	defer srv.Close()
	a := newTestAmadeus(srv.URL)

	hotels, err := a.HotelsByCity(context.Background(), "delhi")
	if err != nil {
		t.Fatalf("HotelsByCity: %v", err)
	}
	if len(hotels) != 1 || hotels[0].HotelID != "HTDEL001" {
		t.Fatalf("unexpected hotels: %+v", hotels)
	}

	_, err = a.HotelsByCity(context.Background(), "Atlantis")
	if !domain.IsValidation(err) || err.Error() != "city: Invalid city selection. Please select a valid city." {
		t.Fatalf("expected invalid city error, got %v", err)
	}
}

func TestOnTimeFlights(t *testing.T) {
	var calls int32
	srv := newAmadeusServer(t, &calls)
	defer srv.Close()

	u, err := newTestAmadeus(srv.URL).OnTimeFlights(context.Background(), "BOM", "2025-01-10")
	if err != nil {
		t.Fatalf("OnTimeFlights: %v", err)
	}
	if u.DelayCount() != 2 || u.GateChangeCount() != 1 {
		t.Fatalf("delays=%d gate changes=%d", u.DelayCount(), u.GateChangeCount())
	}
	if u.GateChanges[0].FlightNumber != "AI2" {
		t.Fatalf("unexpected gate change: %+v", u.GateChanges[0])
	}
}

func TestAmadeusErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestAmadeus(srv.URL).HotelsByID(context.Background(), "X")
	if !domain.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestZoomCarSearchEnrichesCars(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/searchCarByLocation", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "Pune" {
			_, _ = w.Write([]byte(`{"result":false,"data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"result":true,"data":[
			{"carId":1,"brand":"Maruti","name":"Swift","locationId":16,"carAccessoriess":[{"accessoriesTitle":"GPS"}]},
			{"carId":2,"brand":"Tata","name":"Nexon","locationId":99}]}`))
	})
	mux.HandleFunc("/GetCarById", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("id") {
		case "1":
			_, _ = w.Write([]byte(`{"data":{"carId":1,"vehicleNo":"MH12AB1234","pricing":1800}}`))
		default:
			http.Error(w, "missing", http.StatusNotFound)
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	z := NewZoomCar(config.ZoomCarConfig{BaseURL: srv.URL})
	cars, err := z.SearchByLocation(context.Background(), "Pune")
	if err != nil {
		t.Fatalf("SearchByLocation: %v", err)
	}
	if len(cars) != 2 {
		t.Fatalf("expected 2 cars, got %d", len(cars))
	}
	if cars[0].VehicleNumber != "MH12AB1234" || cars[0].FinalPrice != "1800" || cars[0].MappedLocation != "Pune" {
		t.Fatalf("unexpected first car: %+v", cars[0])
	}
	if cars[0].AccessoryTitles() != "GPS" || cars[1].AccessoryTitles() != "None" {
		t.Fatalf("unexpected accessories")
	}
	if cars[1].VehicleNumber != NotAvailable || cars[1].FinalPrice != NotAvailable || cars[1].MappedLocation != "Unknown Location" {
		t.Fatalf("unexpected fallback car: %+v", cars[1])
	}

	none, err := z.SearchByLocation(context.Background(), "Goa")
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no cars, got %v %v", none, err)
	}
}

func TestFormatting(t *testing.T) {
	cases := map[string]string{
		"PT2H5M":  "2h 5m",
		"PT45M":   "0h 45m",
		"P1DT2H":  "26h 0m",
		"garbage": "garbage",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%q) = %q, want %q", in, got, want)
		}
	}
	if code, ok := IATAFor("chennai"); !ok || code != "MAA" {
		t.Fatalf("IATAFor(chennai) = %q, %v", code, ok)
	}
	if CityName("CCU") != "Kolkata" || CityName("XYZ") != "XYZ" {
		t.Fatalf("CityName mapping broken")
	}
	if AirlineName("UK") != "Vistara" || AirlineName("LH") != "LH" {
		t.Fatalf("AirlineName mapping broken")
	}
	if got := Layover("2025-01-10T07:45:00", "2025-01-10T10:00:00"); got != "2h 15m" {
		t.Fatalf("Layover = %q", got)
	}
	if v, err := ToINR("12.5"); err != nil || v != 1375 {
		t.Fatalf("ToINR = %v, %v", v, err)
	}
	if (CarDetail{Pricing: json.RawMessage(`"2500"`)}).Price() != "2500" || (CarDetail{}).Price() != NotAvailable {
		t.Fatalf("CarDetail.Price mismatch")
	}
}

func TestFlightCardWithoutCabinIsUnavailable(t *testing.T) {
	cards := FlightCards([]FlightOffer{{
		ValidatingAirlineCodes: []string{"AI"},
		Price:                  Price{Total: "10"},
		Itineraries: []Itinerary{{Duration: "PT2H", Segments: []Segment{
			{Departure: Endpoint{IATACode: "DEL", At: "2025-01-10T06:00:00"}, Arrival: Endpoint{IATACode: "BOM", At: "2025-01-10T08:00:00"}},
		}}},
	}}, 0)
	if len(cards) != 1 || cards[0].Classes != "Unavailable" || cards[0].StopsLabel != "Non-stop flight" {
		t.Fatalf("unexpected card: %+v", cards)
	}
}
