package intent

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"
)

// Classifier predicts the intent of a raw utterance.
type Classifier interface {
	Predict(text string) (Prediction, error)
}

// Pipeline couples the tokenizer the model was trained with and the model.
type Pipeline struct {
	Tokenizer Tokenizer
	Model     *Model
}

var ErrNoModel = errors.New("intent: model not loaded")

func (p *Pipeline) Predict(text string) (Prediction, error) {
	if p == nil || p.Model == nil || p.Tokenizer == nil {
		return Prediction{}, ErrNoModel
	}
	return p.Model.Predict(p.Tokenizer.Tokens(text)), nil
}

// Fit tokenizes the samples and trains a model on them.
func Fit(samples []Sample, tok Tokenizer, maxFeatures int) (*Model, error) {
	docs := make([][]string, 0, len(samples))
	labels := make([]string, 0, len(samples))
	for _, s := range samples {
		docs = append(docs, tok.Tokens(s.Text))
		labels = append(labels, s.Intent)
	}
	return Train(docs, labels, maxFeatures)
}

// LoadOrTrain loads the persisted model at modelPath, or trains one from the
// CSV at trainingPath and persists it. trained reports which path was taken.
func LoadOrTrain(modelPath, trainingPath string, tok Tokenizer, maxFeatures int) (p *Pipeline, trained bool, err error) {
	if m, err := Load(modelPath); err == nil {
		return &Pipeline{Tokenizer: tok, Model: m}, false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}

	samples, err := ReadTrainingCSV(trainingPath)
	if err != nil {
		return nil, false, err
	}
	m, err := Fit(samples, tok, maxFeatures)
	if err != nil {
		return nil, false, err
	}
	if err := Save(modelPath, m); err != nil {
		return nil, true, err
	}
	return &Pipeline{Tokenizer: tok, Model: m}, true, nil
}

// Save writes the model as snappy-compressed JSON.
func Save(path string, m *Model) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, snappy.Encode(nil, raw), 0o644)
}

// Load reads a model written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("decompress model %s: %w", path, err)
	}
	var m Model
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return &m, nil
}

// ReadTrainingCSV reads a CSV with "conversation" and "intent" columns.
func ReadTrainingCSV(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTrainingCSV(f)
}

func ParseTrainingCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read training header: %w", err)
	}
	textCol, intentCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "conversation", "text", "query":
			textCol = i
		case "intent", "label":
			intentCol = i
		}
	}
	if textCol < 0 || intentCol < 0 {
		return nil, fmt.Errorf("training data needs conversation and intent columns, got %v", header)
	}

	var out []Sample
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if textCol >= len(rec) || intentCol >= len(rec) {
			continue
		}
		text := strings.TrimSpace(rec[textCol])
		label := strings.TrimSpace(rec[intentCol])
		if text == "" || label == "" {
			continue
		}
		out = append(out, Sample{Text: text, Intent: label})
	}
	if len(out) == 0 {
		return nil, ErrNoSamples
	}
	return out, nil
}
