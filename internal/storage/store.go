// Package storage persists snapshots of the views on disk.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
)

// ErrInvalidLabel is returned for snapshot labels that are not a single
// path element.
var ErrInvalidLabel = errors.New("storage: invalid snapshot label")

// Store keeps snapshots as directories under baseDir, each holding
// metadata.json, orbit.csv and cobweb.csv.
type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type SnapshotMetadata struct {
	ID          string                      `json:"id"`
	Label       string                      `json:"label"`
	Timestamp   time.Time                   `json:"timestamp"`
	Param       float64                     `json:"a"`
	Start       float64                     `json:"x0"`
	CobwebSteps int                         `json:"cobweb_steps"`
	OrbitSteps  int                         `json:"orbit_steps"`
	Escape      int                         `json:"escape_index"`
	Lyapunov    float64                     `json:"lyapunov"`
	Ranges      analysis.Ranges             `json:"ranges"`
	Bifurcation []analysis.BifurcationPoint `json:"bifurcation,omitempty"`
}

// Save writes v under a new snapshot directory and returns its ID. bif may be nil.
func (s *Store) Save(label string, v *viewstate.Views, bif *analysis.Bifurcations) (string, error) {
	if label == "" {
		label = "snapshot"
	}
	if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}

	now := s.now()
	id := fmt.Sprintf("%s_%d", label, now.UnixNano())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := SnapshotMetadata{
		ID:          id,
		Label:       label,
		Timestamp:   now,
		Param:       v.Param,
		Start:       v.Start,
		CobwebSteps: (len(v.Cobweb) - 1) / 2,
		OrbitSteps:  len(v.Orbit) - 1,
		Escape:      analysis.EscapeIndex(v.Orbit),
		Lyapunov:    v.Lyapunov,
		Ranges:      v.Ranges,
	}
	if bif != nil {
		meta.Bifurcation = bif.Points
	}

	if err := writeSnapshot(dir, meta, v); err != nil {
		os.RemoveAll(dir)
		return "", err
	}
	return id, nil
}

// writeSnapshot writes the three snapshot files into dir.
func writeSnapshot(dir string, meta SnapshotMetadata, v *viewstate.Views) error {
	if err := writeJSON(filepath.Join(dir, "metadata.json"), meta); err != nil {
		return err
	}

	orbit := make([][]string, 0, len(v.Orbit)+1)
	orbit = append(orbit, []string{"step", "x"})
	for i, x := range v.Orbit {
		orbit = append(orbit, []string{strconv.Itoa(i), formatFloat(x)})
	}
	if err := writeCSV(filepath.Join(dir, "orbit.csv"), orbit); err != nil {
		return err
	}

	cobweb := make([][]string, 0, len(v.Cobweb)+1)
	cobweb = append(cobweb, []string{"x1", "y1", "x2", "y2"})
	for _, seg := range v.Cobweb {
		t := seg.Tuple()
		cobweb = append(cobweb, []string{formatFloat(t[0]), formatFloat(t[1]), formatFloat(t[2]), formatFloat(t[3])})
	}
	return writeCSV(filepath.Join(dir, "cobweb.csv"), cobweb)
}

// List returns every readable snapshot, oldest first.
func (s *Store) List() ([]SnapshotMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SnapshotMetadata{}, nil
		}
		return nil, err
	}

	snaps := make([]SnapshotMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		snaps = append(snaps, *meta)
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.Before(snaps[j].Timestamp)
	})
	return snaps, nil
}

func (s *Store) Load(id string) (*SnapshotMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta SnapshotMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return &meta, nil
}

// LoadOrbit reads the orbit of a snapshot. Diverged values come back as ±Inf or NaN.
func (s *Store) LoadOrbit(id string) (dynamo.Series, error) {
	records, err := readCSV(filepath.Join(s.baseDir, id, "orbit.csv"))
	if err != nil {
		return nil, err
	}

	orbit := make(dynamo.Series, 0, len(records))
	for i, record := range records {
		if len(record) < 2 {
			return nil, fmt.Errorf("orbit.csv row %d: expected 2 fields, got %d", i+1, len(record))
		}
		x, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("orbit.csv row %d: %w", i+1, err)
		}
		orbit = append(orbit, x)
	}
	return orbit, nil
}

func (s *Store) LoadCobweb(id string) (dynamo.Path, error) {
	records, err := readCSV(filepath.Join(s.baseDir, id, "cobweb.csv"))
	if err != nil {
		return nil, err
	}

	path := make(dynamo.Path, 0, len(records))
	for i, record := range records {
		if len(record) < 4 {
			return nil, fmt.Errorf("cobweb.csv row %d: expected 4 fields, got %d", i+1, len(record))
		}
		var t [4]float64
		for j := range t {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("cobweb.csv row %d: %w", i+1, err)
			}
			t[j] = v
		}
		path = append(path, dynamo.Segment{
			From: dynamo.Point{X: t[0], Y: t[1]},
			To:   dynamo.Point{X: t[2], Y: t[3]},
		})
	}
	return path, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns the records after the header row.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}
