package travelapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"travelbot/internal/config"
	"travelbot/internal/domain"
)

const zoomCarService = "zoomcar"

// NotAvailable fills car fields the detail lookup could not provide.
const NotAvailable = "N/A"

// ZoomCar is a client for the ZoomCar demo API.
type ZoomCar struct {
	baseURL     string
	client      *http.Client
	concurrency int
}

func NewZoomCar(cfg config.ZoomCarConfig) *ZoomCar {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &ZoomCar{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		concurrency: 5,
	}
}

type Accessory struct {
	Title string `json:"accessoriesTitle"`
}

// Car is a rental car from the location search, enriched with the detail
// lookup and the mapped location name.
type Car struct {
	CarID              int         `json:"carId"`
	Brand              string      `json:"brand"`
	Name               string      `json:"name"`
	ImageURL           string      `json:"imageUrl"`
	PricingDescription string      `json:"pricingDescription"`
	LocationID         int         `json:"locationId"`
	Accessories        []Accessory `json:"carAccessoriess"`

	MappedLocation string `json:"mappedLocation"`
	VehicleNumber  string `json:"vehicleNumber"`
	FinalPrice     string `json:"finalPrice"`
}

// AccessoryTitles lists accessory names, or "None".
func (c Car) AccessoryTitles() string {
	var names []string
	for _, a := range c.Accessories {
		if t := strings.TrimSpace(a.Title); t != "" {
			names = append(names, t)
		}
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

// CarDetail is the GetCarById payload.
type CarDetail struct {
	CarID     int             `json:"carId"`
	VehicleNo string          `json:"vehicleNo"`
	Pricing   json.RawMessage `json:"pricing"`
}

// Price renders the pricing value whether the API sent a number or a string.
func (d CarDetail) Price() string {
	raw := strings.TrimSpace(string(d.Pricing))
	if raw == "" || raw == "null" {
		return NotAvailable
	}
	var s string
	if err := json.Unmarshal(d.Pricing, &s); err == nil {
		if s == "" {
			return NotAvailable
		}
		return s
	}
	return raw
}

// SearchByLocation lists cars for a city and enriches each with its vehicle
// number, price and mapped location. Detail lookups run concurrently; a
// failed lookup leaves "N/A" in place instead of failing the search.
func (z *ZoomCar) SearchByLocation(ctx context.Context, city string) ([]Car, error) {
	var out struct {
		Result bool  `json:"result"`
		Data   []Car `json:"data"`
	}
	params := url.Values{}
	params.Set("query", city)
	if err := z.get(ctx, z.baseURL+"/searchCarByLocation", params, &out); err != nil {
		return nil, err
	}
	if !out.Result || len(out.Data) == 0 {
		return []Car{}, nil
	}

	cars := out.Data
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(z.concurrency)
	for i := range cars {
		i := i
		cars[i].MappedLocation = LocationName(cars[i].LocationID)
		cars[i].VehicleNumber = NotAvailable
		cars[i].FinalPrice = NotAvailable
		g.Go(func() error {
			d, err := z.CarByID(gctx, cars[i].CarID)
			if err != nil || d.CarID == 0 {
				return nil
			}
			if d.VehicleNo != "" {
				cars[i].VehicleNumber = d.VehicleNo
			}
			cars[i].FinalPrice = d.Price()
			return nil
		})
	}
	_ = g.Wait()
	return cars, nil
}

// CarByID fetches vehicle details for one car.
func (z *ZoomCar) CarByID(ctx context.Context, id int) (CarDetail, error) {
	var out struct {
		Data *CarDetail `json:"data"`
	}
	params := url.Values{}
	params.Set("id", fmt.Sprint(id))
	if err := z.get(ctx, z.baseURL+"/GetCarById", params, &out); err != nil {
		return CarDetail{}, err
	}
	if out.Data == nil {
		return CarDetail{}, domain.UpstreamError{Service: zoomCarService, Msg: "Unexpected response format."}
	}
	return *out.Data, nil
}

func (z *ZoomCar) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create zoomcar request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := z.client.Do(req)
	if err != nil {
		return domain.UpstreamError{Service: zoomCarService, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.UpstreamError{
			Service: zoomCarService,
			Msg:     fmt.Sprintf("zoomcar returned status %d", resp.StatusCode),
			Err:     fmt.Errorf("%s", strings.TrimSpace(string(b))),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.UpstreamError{Service: zoomCarService, Msg: "decode zoomcar response", Err: err}
	}
	return nil
}
