// Package store keeps replay traces on disk, one directory per run.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/ropelab/internal/sequencer"
)

const (
	metadataFile = "metadata.json"
	traceFile    = "trace.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Timestamp time.Time          `json:"timestamp"`
	Base      float64            `json:"base"`
	Dim       int                `json:"dim"`
	Tokens    []string           `json:"tokens"`
	Events    int                `json:"events"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// TraceEvent is one sequencer transition, At measured from the first
// recorded event.
type TraceEvent struct {
	At          time.Duration `json:"at"`
	Label       string        `json:"label"`
	Phase       string        `json:"phase"`
	ActivePair  int           `json:"active_pair"`
	Multipliers []int         `json:"multipliers"`
}

// Save writes meta and trace under a fresh run id and returns the id.
// ID, Timestamp and Events in meta are filled in.
func (s *Store) Save(meta RunMetadata, trace []TraceEvent) (string, error) {
	runID := uuid.NewString()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now().UTC()
	meta.Events = len(trace)

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, traceFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, trace); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteCSV writes trace with one mN column per pair.
func WriteCSV(w io.Writer, trace []TraceEvent) error {
	cw := csv.NewWriter(w)

	pairs := 0
	for _, ev := range trace {
		pairs = max(pairs, len(ev.Multipliers))
	}
	header := []string{"elapsed_ms", "label", "phase", "active_pair"}
	for i := 0; i < pairs; i++ {
		header = append(header, fmt.Sprintf("m%d", i))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, ev := range trace {
		row := []string{
			strconv.FormatInt(ev.At.Milliseconds(), 10),
			ev.Label,
			ev.Phase,
			strconv.Itoa(ev.ActivePair),
		}
		for i := 0; i < pairs; i++ {
			m := 0
			if i < len(ev.Multipliers) {
				m = ev.Multipliers[i]
			}
			row = append(row, strconv.Itoa(m))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrace(runID string) ([]TraceEvent, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, traceFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TraceEvent{}, nil
	}

	trace := make([]TraceEvent, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < 4 {
			return nil, fmt.Errorf("run %s: row %d has %d fields", runID, i+1, len(record))
		}
		ms, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
		}
		if _, err := sequencer.ParsePhase(record[2]); err != nil {
			return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
		}
		active, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
		}

		mult := make([]int, 0, len(record)-4)
		for _, f := range record[4:] {
			m, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("run %s: row %d: %w", runID, i+1, err)
			}
			mult = append(mult, m)
		}

		trace = append(trace, TraceEvent{
			At:          time.Duration(ms) * time.Millisecond,
			Label:       record[1],
			Phase:       record[2],
			ActivePair:  active,
			Multipliers: mult,
		})
	}
	return trace, nil
}
