package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/config"
	"github.com/san-kum/logimap/internal/dynamo"
	"github.com/san-kum/logimap/internal/viewstate"
)

func newViews(t *testing.T, a, x0 float64) *viewstate.Views {
	t.Helper()
	ctrl, err := viewstate.New(config.DefaultConfig(), viewstate.WithBifurcations(analysis.Bifurcations{}))
	require.NoError(t, err)
	ctrl.SetParameter(a)
	return ctrl.SetStartingPoint(x0)
}

func fixedClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	v := newViews(t, 3.2, 0.3)
	bif := &analysis.Bifurcations{Points: []analysis.BifurcationPoint{{Param: 3.0, Unique: 2}}}

	id, err := st.Save("period2", v, bif)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "period2", meta.Label)
	assert.Equal(t, 3.2, meta.Param)
	assert.Equal(t, 0.3, meta.Start)
	assert.Equal(t, config.DefaultCobwebStep, meta.CobwebSteps)
	assert.Equal(t, config.DefaultOrbitSteps, meta.OrbitSteps)
	assert.Equal(t, -1, meta.Escape)
	assert.Equal(t, v.Ranges.Defined, meta.Ranges.Defined)
	assert.Equal(t, bif.Points, meta.Bifurcation)

	orbit, err := st.LoadOrbit(id)
	require.NoError(t, err)
	assert.Equal(t, v.Orbit, orbit)

	cobweb, err := st.LoadCobweb(id)
	require.NoError(t, err)
	assert.Equal(t, v.Cobweb, cobweb)
}

func TestStoreDivergentOrbit(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	v := newViews(t, 4, 1.2)
	id, err := st.Save("", v, nil)
	require.NoError(t, err)

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "snapshot", meta.Label)
	assert.Positive(t, meta.Escape)
	assert.True(t, math.IsInf(meta.Ranges.Undefined[0].Lo, -1))

	orbit, err := st.LoadOrbit(id)
	require.NoError(t, err)
	require.Len(t, orbit, len(v.Orbit))
	assert.True(t, math.IsInf(orbit[len(orbit)-1], -1))
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	st.now = fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, st.Init())

	snaps, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, snaps)

	v := newViews(t, 2.5, 0.1)
	first, err := st.Save("first", v, nil)
	require.NoError(t, err)
	second, err := st.Save("second", v, nil)
	require.NoError(t, err)

	// unreadable entries are skipped
	require.NoError(t, os.MkdirAll(filepath.Join(st.Dir(), "junk"), 0755))

	snaps, err = st.List()
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, first, snaps[0].ID)
	assert.Equal(t, second, snaps[1].ID)
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	snaps, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestStoreFileStructure(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	id, err := st.Save("layout", newViews(t, 3, 0.5), nil)
	require.NoError(t, err)

	for _, name := range []string{"metadata.json", "orbit.csv", "cobweb.csv"} {
		_, err := os.Stat(filepath.Join(st.Dir(), id, name))
		assert.NoError(t, err, name)
	}
}

func TestStoreSaveFailureLeavesNothing(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	// encoding/json rejects NaN, so metadata.json cannot be written
	v := &viewstate.Views{Param: 3, Start: 0.5, Orbit: dynamo.Series{0.5}, Lyapunov: math.NaN()}
	_, err := st.Save("broken", v, nil)
	require.Error(t, err)

	entries, err := os.ReadDir(st.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "a failed save must not leave a partial snapshot")
}

func TestStoreInvalidLabel(t *testing.T) {
	st := New(t.TempDir())
	for _, label := range []string{"../escape", `a\b`, ".."} {
		_, err := st.Save(label, newViews(t, 3, 0.5), nil)
		assert.ErrorIs(t, err, ErrInvalidLabel, label)
	}
}

func TestExportJSON(t *testing.T) {
	v := newViews(t, 3.2, 0.3)
	bif := &analysis.Bifurcations{Points: []analysis.BifurcationPoint{
		{Param: 3.0, Unique: 2},
		{Param: 3.449490, Unique: 4},
		{Param: 3.544090, Unique: 8},
	}}

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, v, bif))

	var decoded struct {
		Views        viewstate.Views             `json:"views"`
		Bifurcations []analysis.BifurcationPoint `json:"bifurcations"`
		Feigenbaum   []float64                   `json:"feigenbaum"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, v.Param, decoded.Views.Param)
	assert.Equal(t, v.Orbit, decoded.Views.Orbit)
	assert.Len(t, decoded.Bifurcations, 3)
	assert.Len(t, decoded.Feigenbaum, 1)
}

func TestExportJSONDivergent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, newViews(t, 4, 1.2), nil))
	assert.Contains(t, buf.String(), `"-Inf"`)
	assert.NotContains(t, buf.String(), "bifurcations")
}

func TestExportJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, ExportJSONFile(path, newViews(t, 2, 0.5), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
