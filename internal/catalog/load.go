package catalog

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadRecords reads a JSON array of raw records.
func ReadRecords(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalogue: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse catalogue %s: %w", path, err)
	}
	return records, nil
}

// WriteRecords writes records as an indented JSON array.
func WriteRecords(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode catalogue: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write catalogue: %w", err)
	}
	return nil
}

// LoadJSON reads, normalises and indexes a JSON catalogue.
func LoadJSON(path string) (*Catalog, Report, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, Report{}, err
	}
	paints, report := Normalize(records)
	return New(paints), report, nil
}

// Records returns the catalogue in raw form, ready to be written back.
func (c *Catalog) Records() []Record {
	out := make([]Record, len(c.paints))
	for i, p := range c.paints {
		out[i] = RecordOf(p)
	}
	return out
}
