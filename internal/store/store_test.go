package store

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ropelab/internal/rope"
	"github.com/san-kum/ropelab/internal/sched"
	"github.com/san-kum/ropelab/internal/sequencer"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{At: 0, Label: "Little", Phase: "animating", ActivePair: 0, Multipliers: []int{0, 0, 0, 0}},
		{At: 400 * time.Millisecond, Label: "Little", Phase: "animating", ActivePair: 0, Multipliers: []int{1, 0, 0, 0}},
		{At: 8800 * time.Millisecond, Label: "Little", Phase: "done", ActivePair: -1, Multipliers: []int{2, 2, 2, 2}},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{
		Kind:    "apply",
		Base:    10000,
		Dim:     8,
		Tokens:  []string{"Little"},
		Metrics: map[string]float64{"duration_ms": 8800},
	}, sampleTrace())
	require.NoError(t, err)

	_, err = uuid.Parse(runID)
	require.NoError(t, err, "run id should be a uuid")

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "apply", meta.Kind)
	assert.Equal(t, 3, meta.Events)
	assert.Equal(t, []string{"Little"}, meta.Tokens)
	assert.InDelta(t, 8800, meta.Metrics["duration_ms"], 1e-9)
	assert.False(t, meta.Timestamp.IsZero())

	trace, err := st.LoadTrace(runID)
	require.NoError(t, err)
	assert.Equal(t, sampleTrace(), trace)
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save(RunMetadata{Kind: "apply"}, sampleTrace())
	require.NoError(t, err)
	second, err := st.Save(RunMetadata{Kind: "scrub"}, nil)
	require.NoError(t, err)

	// stray files and broken runs are skipped
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir(), "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(st.Dir(), "broken"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	ids := []string{runs[0].ID, runs[1].ID}
	assert.ElementsMatch(t, []string{first, second}, ids)
}

func TestStoreList_MissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "nope"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(RunMetadata{Kind: "apply"}, sampleTrace())
	require.NoError(t, err)

	runDir := filepath.Join(st.Dir(), runID)
	assert.FileExists(t, filepath.Join(runDir, "metadata.json"))
	assert.FileExists(t, filepath.Join(runDir, "trace.csv"))

	data, err := os.ReadFile(filepath.Join(runDir, "trace.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "elapsed_ms,label,phase,active_pair,m0,m1,m2,m3", lines[0])
	assert.Equal(t, "8800,Little,done,-1,2,2,2,2", lines[3])
}

func TestLoadTrace_BadPhase(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{}, []TraceEvent{{Label: "x", Phase: "spinning"}})
	require.NoError(t, err)

	_, err = st.LoadTrace(runID)
	assert.ErrorContains(t, err, "unknown phase")
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{Kind: "apply", Base: 500000}, sampleTrace())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportJSON(&buf, runID))

	var out ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, runID, out.Run.ID)
	assert.Equal(t, 500000.0, out.Run.Base)
	assert.Equal(t, 3, out.Steps)
	assert.Equal(t, sampleTrace(), out.Trace)

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, st.ExportJSONFile(path, runID))
	assert.FileExists(t, path)

	assert.Error(t, st.ExportJSON(&buf, "missing"))
}

func TestExportCSV(t *testing.T) {
	st := New(t.TempDir())
	runID, err := st.Save(RunMetadata{}, sampleTrace())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.ExportCSV(&buf, runID))
	assert.True(t, strings.HasPrefix(buf.String(), "elapsed_ms,label,phase,active_pair,m0"))
}

func TestRecorder(t *testing.T) {
	clock := sched.NewManual(time.Time{})
	thetas, err := rope.ComputeThetas(10000, 8)
	require.NoError(t, err)

	seq, err := sequencer.New(sequencer.Token{
		Label:    "Twinkle",
		Position: 1,
		Query:    rope.Vector{0.10, 0.43, -0.22, 0.91, -0.05, 0.33, 0.88, -0.12},
		Key:      rope.Vector{-0.55, 0.12, 0.44, -0.98, 0.23, -0.76, 0.11, 0.45},
	}, thetas, clock, sequencer.DefaultPacing())
	require.NoError(t, err)

	rec := NewRecorder(clock.Now)
	seq.AddObserver(rec)
	clock.Advance(time.Second)
	seq.Start()
	clock.RunUntilIdle(0)

	events := rec.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, time.Duration(0), events[0].At)
	last := events[len(events)-1]
	assert.Equal(t, "done", last.Phase)
	assert.Equal(t, []int{1, 1, 1, 1}, last.Multipliers)
	assert.Equal(t, sequencer.DefaultPacing().Duration(1, 4), last.At)
	assert.Equal(t, len(events), rec.Len())
}
