// Package travelapi wraps the third-party travel APIs the assistant reads
// live data from: Amadeus (flights, hotels, recommendations, on-time
// predictions) and ZoomCar (rental cars).
package travelapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"travelbot/internal/config"
	"travelbot/internal/domain"
)

const amadeusService = "amadeus"

// tokenSkew renews the access token slightly before Amadeus expires it.
const tokenSkew = 30 * time.Second

// Amadeus is a client for the Amadeus self-service APIs using the OAuth2
// client-credentials flow. It is safe for concurrent use.
type Amadeus struct {
	baseURL      string
	onTimeURL    string
	clientID     string
	clientSecret string
	client       *http.Client
	now          func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

func NewAmadeus(cfg config.AmadeusConfig) *Amadeus {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Amadeus{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		onTimeURL:    cfg.OnTimeURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		client:       &http.Client{Timeout: timeout},
		now:          time.Now,
	}
}

// Configured reports whether API credentials are present.
func (a *Amadeus) Configured() bool {
	return a != nil && a.clientID != "" && a.clientSecret != ""
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// Token returns a cached access token, requesting a new one when the
// cached token is missing or about to expire.
func (a *Amadeus) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.expires) {
		return a.token, nil
	}
	if !a.Configured() {
		return "", domain.UpstreamError{Service: amadeusService, Msg: "Amadeus credentials are not configured."}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.clientID)
	form.Set("client_secret", a.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out tokenResponse
	if err := a.do(req, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", domain.UpstreamError{Service: amadeusService, Msg: "Failed to retrieve access token."}
	}
	a.token = out.AccessToken
	ttl := time.Duration(out.ExpiresIn) * time.Second
	if ttl > tokenSkew {
		ttl -= tokenSkew
	}
	a.expires = a.now().Add(ttl)
	return a.token, nil
}

func (a *Amadeus) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	token, err := a.Token(ctx)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create amadeus request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return a.do(req, out)
}

func (a *Amadeus) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return domain.UpstreamError{Service: amadeusService, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.UpstreamError{
			Service: amadeusService,
			Msg:     fmt.Sprintf("amadeus returned status %d", resp.StatusCode),
			Err:     fmt.Errorf("%s", strings.TrimSpace(string(b))),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.UpstreamError{Service: amadeusService, Msg: "decode amadeus response", Err: err}
	}
	return nil
}

// FlightQuery selects flight offers between two airports.
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	Adults        int
	TravelClass   string
	Max           int
}

type Endpoint struct {
	IATACode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type Segment struct {
	Departure   Endpoint `json:"departure"`
	Arrival     Endpoint `json:"arrival"`
	CarrierCode string   `json:"carrierCode"`
	Number      string   `json:"number"`
	Duration    string   `json:"duration"`
	Cabin       string   `json:"cabin,omitempty"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Price struct {
	Currency string `json:"currency"`
	Total    string `json:"total"`
}

type FareDetail struct {
	SegmentID string `json:"segmentId"`
	Cabin     string `json:"cabin"`
}

type TravelerPricing struct {
	FareDetailsBySegment []FareDetail `json:"fareDetailsBySegment"`
}

// FlightOffer is one entry of the flight-offers search response.
type FlightOffer struct {
	ID                     string            `json:"id"`
	ValidatingAirlineCodes []string          `json:"validatingAirlineCodes"`
	Price                  Price             `json:"price"`
	Itineraries            []Itinerary       `json:"itineraries"`
	TravelerPricings       []TravelerPricing `json:"travelerPricings,omitempty"`
}

// FlightOffers searches priced offers. Defaults are one adult, economy,
// ten results.
func (a *Amadeus) FlightOffers(ctx context.Context, q FlightQuery) ([]FlightOffer, error) {
	if q.Origin == "" || q.Destination == "" || q.DepartureDate == "" {
		return nil, domain.ValidationError{Msg: "Origin, destination and departure date are required."}
	}
	if q.Adults <= 0 {
		q.Adults = 1
	}
	if q.TravelClass == "" {
		q.TravelClass = "ECONOMY"
	}
	if q.Max <= 0 {
		q.Max = 10
	}
	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", fmt.Sprint(q.Adults))
	params.Set("travelClass", strings.ToUpper(q.TravelClass))
	params.Set("max", fmt.Sprint(q.Max))
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}

	var out struct {
		Data []FlightOffer `json:"data"`
	}
	if err := a.get(ctx, a.baseURL+"/v2/shopping/flight-offers", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

type Address struct {
	CountryCode string   `json:"countryCode"`
	CityName    string   `json:"cityName,omitempty"`
	Lines       []string `json:"lines,omitempty"`
}

type GeoCode struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Hotel is a hotel reference record.
type Hotel struct {
	HotelID   string   `json:"hotelId"`
	Name      string   `json:"name"`
	IATACode  string   `json:"iataCode"`
	ChainCode string   `json:"chainCode,omitempty"`
	Address   Address  `json:"address"`
	GeoCode   *GeoCode `json:"geoCode,omitempty"`
}

// HotelsByCity lists hotels for a city name from the supported city table.
func (a *Amadeus) HotelsByCity(ctx context.Context, city string) ([]Hotel, error) {
	code, ok := IATAFor(city)
	if !ok {
		return nil, domain.ValidationError{Field: "city", Msg: "Invalid city selection. Please select a valid city."}
	}
	params := url.Values{}
	params.Set("cityCode", code)

	var out struct {
		Data []Hotel `json:"data"`
	}
	if err := a.get(ctx, a.baseURL+"/v1/reference-data/locations/hotels/by-city", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// HotelsByID looks hotels up by their Amadeus ids.
func (a *Amadeus) HotelsByID(ctx context.Context, ids ...string) ([]Hotel, error) {
	if len(ids) == 0 {
		return nil, domain.ValidationError{Field: "hotelId", Msg: "hotel id is required"}
	}
	params := url.Values{}
	params.Set("hotelIds", strings.Join(ids, ","))

	var out struct {
		Data []Hotel `json:"data"`
	}
	if err := a.get(ctx, a.baseURL+"/v1/reference-data/locations/hotels/by-hotels", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// Location is a destination returned by the recommended-locations API.
type Location struct {
	Type      string   `json:"type"`
	SubType   string   `json:"subtype"`
	Name      string   `json:"name"`
	IATACode  string   `json:"iataCode"`
	GeoCode   *GeoCode `json:"geoCode,omitempty"`
	Relevance float64  `json:"relevance"`
}

// RecommendedLocations suggests destinations similar to cityCode for a
// traveler from travelerCountry. destinationCountry is optional.
func (a *Amadeus) RecommendedLocations(ctx context.Context, cityCode, travelerCountry, destinationCountry string) ([]Location, error) {
	params := url.Values{}
	params.Set("cityCodes", cityCode)
	params.Set("travelerCountryCode", travelerCountry)
	if destinationCountry != "" {
		params.Set("destinationCountryCodes", destinationCountry)
	}
	var out struct {
		Data []Location `json:"data"`
	}
	if err := a.get(ctx, a.baseURL+"/v1/reference-data/recommended-locations", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// FlightUpdate is one flight in the on-time prediction response. Delay and
// GateChange carry whatever the API sends; any non-empty value counts.
type FlightUpdate struct {
	FlightNumber string `json:"flightNumber,omitempty"`
	CarrierCode  string `json:"carrierCode,omitempty"`
	Delay        any    `json:"delay,omitempty"`
	GateChange   any    `json:"gateChange,omitempty"`
}

func (f FlightUpdate) Delayed() bool     { return truthy(f.Delay) || truthy(f.GateChange) }
func (f FlightUpdate) GateChanged() bool { return truthy(f.GateChange) }

// AirportUpdates summarizes delays and gate changes at one airport.
type AirportUpdates struct {
	Airport     string         `json:"airport"`
	Date        string         `json:"date"`
	Delayed     []FlightUpdate `json:"delayed"`
	GateChanges []FlightUpdate `json:"gateChanges"`
}

func (u AirportUpdates) DelayCount() int      { return len(u.Delayed) }
func (u AirportUpdates) GateChangeCount() int { return len(u.GateChanges) }

// OnTimeFlights fetches on-time predictions for an airport and date. A
// flight with a gate change is counted both as delayed and as a gate change.
func (a *Amadeus) OnTimeFlights(ctx context.Context, airport, date string) (AirportUpdates, error) {
	res := AirportUpdates{Airport: airport, Date: date, Delayed: []FlightUpdate{}, GateChanges: []FlightUpdate{}}
	params := url.Values{}
	params.Set("airportCode", airport)
	params.Set("date", date)

	var out struct {
		Flights []FlightUpdate `json:"flights"`
	}
	if err := a.get(ctx, a.onTimeURL, params, &out); err != nil {
		return res, err
	}
	for _, f := range out.Flights {
		if !f.Delayed() {
			continue
		}
		res.Delayed = append(res.Delayed, f)
		if f.GateChanged() {
			res.GateChanges = append(res.GateChanges, f)
		}
	}
	return res, nil
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
