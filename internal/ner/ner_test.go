package ner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLocationsJoinsWordpieces(t *testing.T) {
	ents := []Entity{
		{Entity: "B-LOC", Word: "mum"},
		{Entity: "I-LOC", Word: "##bai"},
		{Entity: "B-PER", Word: "ravi"},
		{Entity: "B-LOC", Word: "DELHI"},
	}
	got := Locations(ents)
	want := []string{"Mumbai", "Delhi"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Locations mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanEntities(t *testing.T) {
	ents := []Entity{
		{Entity: "B-ORG", Word: "indi"},
		{Entity: "I-ORG", Word: "##go"},
		{Entity: "B-MISC", Word: "suite!"},
	}
	got := CleanEntities(ents)
	want := []string{"Indigo", "Suite"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("CleanEntities mismatch (-want +got):\n%s", diff)
	}
	if CleanEntities(nil) != nil {
		t.Fatalf("expected nil for no entities")
	}
}

func TestClassifyEntities(t *testing.T) {
	got := DefaultCatalog.ClassifyEntities(
		[]string{"Indigo", "suv", "Deluxe", "severe", "unknownthing", "Pune"},
		[]string{"pune", "Atlantis"},
	)
	want := "Airline: IndiGo, Car Type: SUV, Room Type: Deluxe, Advisory Level: Severe, Flight Destination: Pune, City: Pune"
	if got != want {
		t.Fatalf("ClassifyEntities =\n%q\nwant\n%q", got, want)
	}
	if got := DefaultCatalog.ClassifyEntities(nil, nil); got != "" {
		t.Fatalf("expected empty classification, got %q", got)
	}
}

func TestClassifyOrderPrefersEarlierLists(t *testing.T) {
	// Jaipur is both a source city and a catalog city.
	label, value := DefaultCatalog.classify("jaipur")
	if label != "Flight Source" || value != "Jaipur" {
		t.Fatalf("classify(jaipur) = %q, %q", label, value)
	}
	label, _ = DefaultCatalog.classify("daily rate")
	if label != "Price Per Day" {
		t.Fatalf("classify(daily rate) = %q", label)
	}
}

func TestCatalogFind(t *testing.T) {
	m := DefaultCatalog.Find("Fly Air India from Delhi to Mumbai, then a deluxe room and an SUV")
	if m.Airline != "Air India" || m.RoomType != "Deluxe" || m.CarType != "SUV" {
		t.Fatalf("unexpected matches: %+v", m)
	}
	if diff := cmp.Diff([]string{"Delhi", "Mumbai"}, m.Cities); diff != "" {
		t.Fatalf("cities mismatch (-want +got):\n%s", diff)
	}
	if m := DefaultCatalog.Find("Punekar suites"); len(m.Cities) != 0 || m.RoomType != "" {
		t.Fatalf("partial words must not match: %+v", m)
	}
}

func TestGazetteerTagger(t *testing.T) {
	g := NewGazetteerTagger(DefaultCatalog)
	ents, err := g.Tag(context.Background(), "Book IndiGo from Chennai to Goa")
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if len(ents) != 3 {
		t.Fatalf("expected 3 entities, got %+v", ents)
	}
	if ents[0].Entity != "B-ORG" || ents[1].Entity != "B-LOC" || ents[2].Word != "goa" {
		t.Fatalf("unexpected entities: %+v", ents)
	}
	if diff := cmp.Diff([]string{"Chennai", "Goa"}, Locations(ents)); diff != "" {
		t.Fatalf("locations mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPTagger(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body["inputs"] == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode([]Entity{{Entity: "B-LOC", Word: "pune", Score: 0.99}})
	}))
	defer srv.Close()

	ents, err := NewHTTPTagger(srv.URL, "secret", 0).Tag(context.Background(), "hotels in pune")
	if err != nil {
		t.Fatalf("Tag: %v", err)
	}
	if len(ents) != 1 || ents[0].Word != "pune" {
		t.Fatalf("unexpected entities: %+v", ents)
	}

	if _, err := NewHTTPTagger(srv.URL, "wrong", 0).Tag(context.Background(), "x"); err == nil {
		t.Fatalf("expected an error on 401")
	}
}

type failingTagger struct{}

func (failingTagger) Tag(context.Context, string) ([]Entity, error) {
	return nil, errors.New("down")
}

func TestFallback(t *testing.T) {
	var seen error
	f := Fallback{
		Primary:   failingTagger{},
		Secondary: NewGazetteerTagger(DefaultCatalog),
		OnError:   func(err error) { seen = err },
	}
	ents, err := f.Tag(context.Background(), "hotels in Delhi")
	if err != nil || len(ents) != 1 {
		t.Fatalf("fallback failed: %v %+v", err, ents)
	}
	if seen == nil {
		t.Fatalf("expected OnError to be called")
	}
	if _, err := (Fallback{Primary: failingTagger{}}).Tag(context.Background(), "x"); err == nil {
		t.Fatalf("expected the primary error without a secondary")
	}
}
