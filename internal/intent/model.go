package intent

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultMaxFeatures caps the TF-IDF vocabulary.
const DefaultMaxFeatures = 1500

const smoothing = 1.0

// Sample is one labelled training utterance.
type Sample struct {
	Text   string
	Intent string
}

// Prediction is the classifier output for one utterance.
type Prediction struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Model is a TF-IDF vectorizer followed by a multinomial naive Bayes
// classifier. IDF uses smoothing: ln((1+n)/(1+df)) + 1; vectors are
// l2-normalized.
type Model struct {
	Vocabulary     map[string]int `json:"vocabulary"`
	IDF            []float64      `json:"idf"`
	Classes        []string       `json:"classes"`
	ClassLogPrior  []float64      `json:"class_log_prior"`
	FeatureLogProb [][]float64    `json:"feature_log_prob"`
}

var (
	ErrNoSamples     = errors.New("intent: no training samples")
	ErrLabelMismatch = errors.New("intent: documents and labels differ in length")
	ErrModelShape    = errors.New("intent: model dimensions do not match")
)

// Validate checks that the weights line up with the vocabulary and classes.
func (m *Model) Validate() error {
	n := len(m.IDF)
	if len(m.Classes) == 0 {
		return fmt.Errorf("%w: no classes", ErrModelShape)
	}
	if len(m.Vocabulary) != n {
		return fmt.Errorf("%w: %d terms, %d idf weights", ErrModelShape, len(m.Vocabulary), n)
	}
	for term, j := range m.Vocabulary {
		if j < 0 || j >= n {
			return fmt.Errorf("%w: term %q has index %d", ErrModelShape, term, j)
		}
	}
	if len(m.ClassLogPrior) != len(m.Classes) || len(m.FeatureLogProb) != len(m.Classes) {
		return fmt.Errorf("%w: %d classes, %d priors, %d weight rows",
			ErrModelShape, len(m.Classes), len(m.ClassLogPrior), len(m.FeatureLogProb))
	}
	for c, row := range m.FeatureLogProb {
		if len(row) != n {
			return fmt.Errorf("%w: class %q has %d weights, want %d", ErrModelShape, m.Classes[c], len(row), n)
		}
	}
	return nil
}

// Train fits a model on tokenized documents.
func Train(docs [][]string, labels []string, maxFeatures int) (*Model, error) {
	if len(docs) == 0 {
		return nil, ErrNoSamples
	}
	if len(docs) != len(labels) {
		return nil, ErrLabelMismatch
	}
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}

	m := &Model{Vocabulary: buildVocabulary(docs, maxFeatures)}

	df := make([]float64, len(m.Vocabulary))
	for _, doc := range docs {
		seen := map[int]bool{}
		for _, tok := range doc {
			if j, ok := m.Vocabulary[tok]; ok && !seen[j] {
				seen[j] = true
				df[j]++
			}
		}
	}
	n := float64(len(docs))
	m.IDF = make([]float64, len(df))
	for j, d := range df {
		m.IDF[j] = math.Log((1+n)/(1+d)) + 1
	}

	classIndex := map[string]int{}
	for _, l := range labels {
		if _, ok := classIndex[l]; !ok {
			classIndex[l] = 0
			m.Classes = append(m.Classes, l)
		}
	}
	sort.Strings(m.Classes)
	for i, c := range m.Classes {
		classIndex[c] = i
	}

	counts := make([]float64, len(m.Classes))
	featureSums := make([][]float64, len(m.Classes))
	for i := range featureSums {
		featureSums[i] = make([]float64, len(m.Vocabulary))
	}
	for i, doc := range docs {
		c := classIndex[labels[i]]
		counts[c]++
		for j, v := range m.vectorize(doc) {
			featureSums[c][j] += v
		}
	}

	m.ClassLogPrior = make([]float64, len(m.Classes))
	m.FeatureLogProb = make([][]float64, len(m.Classes))
	vocab := float64(len(m.Vocabulary))
	for c := range m.Classes {
		m.ClassLogPrior[c] = math.Log(counts[c] / n)
		total := 0.0
		for _, v := range featureSums[c] {
			total += v
		}
		row := make([]float64, len(m.Vocabulary))
		for j, v := range featureSums[c] {
			row[j] = math.Log(v+smoothing) - math.Log(total+smoothing*vocab)
		}
		m.FeatureLogProb[c] = row
	}
	return m, nil
}

// Predict classifies a tokenized utterance. Confidence is the softmax of the
// joint log likelihoods.
func (m *Model) Predict(tokens []string) Prediction {
	if m == nil || len(m.Classes) == 0 {
		return Prediction{}
	}
	x := m.vectorize(tokens)
	scores := make([]float64, len(m.Classes))
	best := 0
	for c := range m.Classes {
		s := m.ClassLogPrior[c]
		for j, v := range x {
			s += v * m.FeatureLogProb[c][j]
		}
		scores[c] = s
		if s > scores[best] {
			best = c
		}
	}
	sum := 0.0
	for _, s := range scores {
		sum += math.Exp(s - scores[best])
	}
	return Prediction{Intent: m.Classes[best], Confidence: 1 / sum}
}

// vectorize returns the sparse l2-normalized TF-IDF vector of doc.
func (m *Model) vectorize(doc []string) map[int]float64 {
	tf := map[int]float64{}
	for _, tok := range doc {
		if j, ok := m.Vocabulary[tok]; ok {
			tf[j]++
		}
	}
	norm := 0.0
	for j, v := range tf {
		w := v * m.IDF[j]
		tf[j] = w
		norm += w * w
	}
	if norm == 0 {
		return tf
	}
	norm = math.Sqrt(norm)
	for j := range tf {
		tf[j] /= norm
	}
	return tf
}

// buildVocabulary keeps the maxFeatures most frequent terms; indices follow
// alphabetical order.
func buildVocabulary(docs [][]string, maxFeatures int) map[string]int {
	freq := map[string]int{}
	for _, doc := range docs {
		for _, tok := range doc {
			freq[tok]++
		}
	}
	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)
	vocab := make(map[string]int, len(terms))
	for i, t := range terms {
		vocab[t] = i
	}
	return vocab
}
