package intent

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Tokenizer turns raw text into classifier features.
type Tokenizer interface {
	Tokens(text string) []string
}

var nonWordRe = regexp.MustCompile(`\W+`)

// Analyzer runs text through bleve's English analyzer: lowercasing, stop
// word removal and stemming. Only alphabetic terms survive.
type Analyzer struct {
	im *mapping.IndexMappingImpl
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{im: mapping.NewIndexMapping()}
}

func (a *Analyzer) Tokens(text string) []string {
	clean := strings.ToLower(nonWordRe.ReplaceAllString(text, " "))
	stream, err := a.im.AnalyzeText(en.AnalyzerName, []byte(clean))
	if err != nil {
		return alphaOnly(strings.Fields(clean))
	}
	out := make([]string, 0, len(stream))
	for _, tok := range stream {
		out = append(out, string(tok.Term))
	}
	return alphaOnly(out)
}

// Preprocess joins the analyzed tokens back into a single string.
func (a *Analyzer) Preprocess(text string) string {
	return strings.Join(a.Tokens(text), " ")
}

func alphaOnly(tokens []string) []string {
	out := tokens[:0]
	for _, t := range tokens {
		if t == "" {
			continue
		}
		ok := true
		for _, r := range t {
			if !unicode.IsLetter(r) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, t)
		}
	}
	return out
}
