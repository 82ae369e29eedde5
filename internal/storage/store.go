package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/l96lab/internal/dynamo"
	"github.com/san-kum/l96lab/internal/model"
)

// Store persists runs as one directory each under baseDir:
// metadata.json, trajectory.csv (time + slow components, valid prefix
// only), fast.csv when fast variables were recorded, and closure.json
// once a parameterization has been fitted from the run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Model       string             `json:"model"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Dt          float64            `json:"dt"`
	Duration    float64            `json:"duration"`
	SampleEvery float64            `json:"sample_every"`
	Integrator  string             `json:"integrator"`
	Closure     string             `json:"closure,omitempty"`
	Params      model.Params       `json:"params"`
	Samples     int                `json:"samples"`
	Valid       int                `json:"valid"`
	Diverged    bool               `json:"diverged"`
	LastTime    float64            `json:"last_time"`
	Metrics     map[string]float64 `json:"metrics"`
}

// FittedClosure is the persisted result of a polynomial fit.
type FittedClosure struct {
	Degree  int       `json:"degree"`
	Coeffs  []float64 `json:"coeffs"` // highest degree first
	RMSE    float64   `json:"rmse"`
	Samples int       `json:"samples"`
	FitFrom string    `json:"fit_from"`
}

func (s *Store) Save(meta RunMetadata, tr *dynamo.Trajectory) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Model, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = time.Now()
	meta.Samples = tr.Len()
	meta.Valid = tr.Valid
	meta.Diverged = tr.Diverged
	meta.LastTime = tr.LastTime
	meta.Metrics = tr.Metrics

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	if err := s.writeSeries(filepath.Join(runDir, "trajectory.csv"), tr.ValidTimes(), tr.X[:tr.Valid], "x"); err != nil {
		return "", err
	}

	if tr.Y != nil {
		if err := s.writeSeries(filepath.Join(runDir, "fast.csv"), tr.ValidTimes(), tr.Y[:tr.Valid], "y"); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func (s *Store) writeSeries(path string, times []float64, states []dynamo.State, prefix string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if len(states) == 0 {
		return nil
	}

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, fmt.Sprintf("%s%d", prefix, i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := make([]string, 0, len(states[i])+1)
		row = append(row, strconv.FormatFloat(times[i], 'f', 6, 64))
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

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

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadTrajectory rebuilds the recorded trajectory (and fast variables,
// if the run saved them). Only the valid prefix was persisted, so the
// result has Valid == Len.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, error) {
	times, states, err := readSeries(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}

	tr := &dynamo.Trajectory{
		Times: times,
		X:     states,
		Valid: len(times),
	}
	if len(times) > 0 {
		tr.LastTime = times[len(times)-1]
	}

	if meta, err := s.Load(runID); err == nil {
		tr.Diverged = meta.Diverged
		tr.Metrics = meta.Metrics
	}

	fastPath := filepath.Join(s.baseDir, runID, "fast.csv")
	if _, err := os.Stat(fastPath); err == nil {
		_, fast, err := readSeries(fastPath)
		if err != nil {
			return nil, err
		}
		tr.Y = fast
	}

	return tr, nil
}

func readSeries(path string) ([]float64, []dynamo.State, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) < 2 {
		return []float64{}, []dynamo.State{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) == 0 {
			continue
		}

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}

		state := make(dynamo.State, 0, len(record)-1)
		for j := 1; j < len(record); j++ {
			val, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				continue
			}
			state = append(state, val)
		}

		times = append(times, t)
		states = append(states, state)
	}

	return times, states, nil
}

func (s *Store) SaveClosure(runID string, fc FittedClosure) error {
	return writeJSON(filepath.Join(s.baseDir, runID, "closure.json"), fc)
}

func (s *Store) LoadClosure(runID string) (*FittedClosure, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "closure.json"))
	if err != nil {
		return nil, err
	}

	var fc FittedClosure
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

func writeJSON(path string, v interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
