package itembank

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// bankFile is the on-disk representation of a bank.
type bankFile struct {
	Version string `yaml:"version"`
	Items   []Item `yaml:"items"`
}

// LegacyRecord is a question row exported by the authoring database, with a
// 1-5 difficulty rating and no calibration.
type LegacyRecord struct {
	ID         string   `yaml:"id"`
	Subject    string   `yaml:"subject"`
	Difficulty float64  `yaml:"difficulty"`
	Question   string   `yaml:"question_text"`
	Options    []string `yaml:"options"`
	Answer     string   `yaml:"answer"`
	Hints      []string `yaml:"hints"`
	GradeLevel int      `yaml:"grade_level"`
}

// Default calibration applied to legacy records.
const (
	LegacyDiscrimination = 1.2
	LegacyGuessing       = 0.1
	legacyDifficultyMid  = 2.5
)

// Item converts the record using the default legacy calibration.
func (r LegacyRecord) Item() Item {
	return Item{
		ID:         r.ID,
		Section:    SectionForDomain(r.Subject),
		Domain:     r.Subject,
		GradeLevel: r.GradeLevel,
		Params: Params{
			Discrimination: LegacyDiscrimination,
			Difficulty:     r.Difficulty - legacyDifficultyMid,
			Guessing:       LegacyGuessing,
		},
		Content: Content{
			Prompt:  r.Question,
			Options: r.Options,
			Answer:  r.Answer,
		},
		Hints: r.Hints,
	}
}

// LoadYAML decodes and validates a bank file.
func LoadYAML(r io.Reader) (*Bank, error) {
	var f bankFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode bank: %w", err)
	}
	return New(f.Version, f.Items)
}

// LoadLegacyYAML decodes a list of legacy records and builds a bank with the
// given version.
func LoadLegacyYAML(version string, r io.Reader) (*Bank, error) {
	var records []LegacyRecord
	if err := yaml.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode legacy records: %w", err)
	}
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.Item())
	}
	return New(version, items)
}

// MarshalYAML encodes a bank in the format read by LoadYAML.
func MarshalYAML(b *Bank) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(bankFile{Version: b.Version(), Items: b.AllItems()}); err != nil {
		return nil, fmt.Errorf("encode bank: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode bank: %w", err)
	}
	return buf.Bytes(), nil
}

// Seed returns the embedded default bank.
func Seed() (*Bank, error) {
	return LoadYAML(bytes.NewReader(seedYAML))
}
