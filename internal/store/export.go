package store

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run   RunMetadata  `json:"run"`
	Steps int          `json:"steps"`
	Trace []TraceEvent `json:"trace"`
}

// ExportJSON writes a saved run, metadata and trace, as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}
	return writeJSON(w, ExportData{Run: *meta, Steps: len(trace), Trace: trace})
}

// ExportJSONFile is ExportJSON into a file at path.
func (s *Store) ExportJSONFile(path, runID string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.ExportJSON(file, runID)
}

// ExportCSV copies a saved trace to w.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	trace, err := s.LoadTrace(runID)
	if err != nil {
		return err
	}
	return WriteCSV(w, trace)
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
