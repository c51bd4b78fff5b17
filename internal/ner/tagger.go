package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Tagger extracts named entities from an utterance.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]Entity, error)
}

// HTTPTagger calls a hosted token-classification model. The endpoint
// receives {"inputs": text} and answers with a list of entities.
type HTTPTagger struct {
	endpoint string
	token    string
	client   *http.Client
}

func NewHTTPTagger(endpoint, token string, timeout time.Duration) *HTTPTagger {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPTagger{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

func (t *HTTPTagger) Tag(ctx context.Context, text string) ([]Entity, error) {
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("marshal ner request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create ner request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ner request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ner returned status %d: %s", resp.StatusCode, string(b))
	}

	var out []Entity
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode ner response: %w", err)
	}
	return out, nil
}

// GazetteerTagger tags catalog values found in the text. Cities become
// LOC, airlines and rental companies ORG, everything else MISC.
type GazetteerTagger struct {
	Catalog Catalog
}

func NewGazetteerTagger(c Catalog) *GazetteerTagger {
	return &GazetteerTagger{Catalog: c}
}

func (g *GazetteerTagger) Tag(_ context.Context, text string) ([]Entity, error) {
	groups := []struct {
		tag    string
		values []string
	}{
		{"LOC", g.Catalog.Cities},
		{"ORG", g.Catalog.Airlines},
		{"ORG", g.Catalog.CarRentalCompanies},
		{"MISC", g.Catalog.HotelNames},
		{"MISC", g.Catalog.RoomTypes},
		{"MISC", g.Catalog.CarTypes},
		{"MISC", g.Catalog.AdvisoryReasons},
	}

	var out []Entity
	taken := make([]bool, len(text))
	for _, grp := range groups {
		for _, v := range grp.values {
			for _, loc := range wordRe(v).FindAllStringIndex(text, -1) {
				if overlaps(taken, loc[0], loc[1]) {
					continue
				}
				for i := loc[0]; i < loc[1]; i++ {
					taken[i] = true
				}
				out = append(out, Entity{
					Entity: "B-" + grp.tag,
					Word:   strings.ToLower(text[loc[0]:loc[1]]),
					Score:  1,
					Start:  loc[0],
					End:    loc[1],
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func overlaps(taken []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if taken[i] {
			return true
		}
	}
	return false
}

// Fallback tries Primary and uses Secondary when it fails.
type Fallback struct {
	Primary   Tagger
	Secondary Tagger
	OnError   func(error)
}

func (f Fallback) Tag(ctx context.Context, text string) ([]Entity, error) {
	if f.Primary != nil {
		ents, err := f.Primary.Tag(ctx, text)
		if err == nil {
			return ents, nil
		}
		if f.OnError != nil {
			f.OnError(err)
		}
		if f.Secondary == nil {
			return nil, err
		}
	}
	return f.Secondary.Tag(ctx, text)
}
