package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/logimap/internal/analysis"
	"github.com/san-kum/logimap/internal/viewstate"
)

type ExportData struct {
	Views        *viewstate.Views            `json:"views"`
	Bifurcations []analysis.BifurcationPoint `json:"bifurcations,omitempty"`
	Feigenbaum   []float64                   `json:"feigenbaum,omitempty"`
}

func newExportData(v *viewstate.Views, bif *analysis.Bifurcations) ExportData {
	data := ExportData{Views: v}
	if bif != nil {
		data.Bifurcations = bif.Points
		data.Feigenbaum = analysis.FeigenbaumRatios(bif.Points)
	}
	return data
}

// ExportJSON writes an indented JSON document of v and, if bif is non-nil,
// the detected bifurcation points.
func ExportJSON(w io.Writer, v *viewstate.Views, bif *analysis.Bifurcations) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newExportData(v, bif))
}

func ExportJSONFile(path string, v *viewstate.Views, bif *analysis.Bifurcations) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := ExportJSON(f, v, bif); err != nil {
		return err
	}
	return f.Close()
}
