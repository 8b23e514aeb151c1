// Package report exports an analysis.Report as CSV tables and a YAML summary.
package report

import (
	"bufio"
	"encoding/csv"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/2x3systems/govasc/libvasc/analysis"
	"github.com/2x3systems/govasc/libvasc/formats/textio"
)

var (
	SectionsHeader = []string{
		"section", "num_samples", "num_segments", "length", "surface_area", "volume",
		"min_radius", "mean_radius", "max_radius", "radius_ratio",
		"min_segment_length", "mean_segment_length", "max_segment_length", "segment_length_ratio",
		"min_segment_area", "mean_segment_area", "max_segment_area", "segment_area_ratio",
		"min_segment_volume", "mean_segment_volume", "max_segment_volume", "segment_volume_ratio",
		"sampling_density", "thickness_to_length",
	}
	SegmentsHeader = []string{
		"section", "segment", "length", "lateral_area", "surface_area", "volume",
		"x", "y", "z", "axis",
	}
	SpatialHeader = []string{"value", "x", "y", "z"}
)

func ftoa(v float64) string { return textio.FormatFloat(v) }

// mtoa leaves undefined measures blank.
func mtoa(m analysis.Measure) string {
	if !m.Valid {
		return ""
	}
	return ftoa(m.Value)
}

func writeCSV(pathname string, header []string, rows func(emit func(row []string) error) error) error {
	return textio.WriteFile(pathname, func(out *bufio.Writer) error {
		w := csv.NewWriter(out)
		if err := w.Write(header); err != nil {
			return err
		}
		if err := rows(w.Write); err != nil {
			return err
		}
		w.Flush()
		return w.Error()
	})
}

// WriteSectionsCSV writes one row per section in canonical order.
func WriteSectionsCSV(pathname string, R *analysis.Report) error {
	return writeCSV(pathname, SectionsHeader, func(emit func([]string) error) error {
		for _, st := range R.Sections {
			row := []string{
				strconv.Itoa(st.Section),
				strconv.Itoa(st.NumSamples),
				strconv.Itoa(st.NumSegments),
				ftoa(st.Length),
				ftoa(st.SurfaceArea),
				ftoa(st.Volume),
			}
			for _, sv := range []analysis.Stat{st.Radius, st.SegmentLength, st.SegmentArea, st.SegmentVolume} {
				row = append(row, mtoa(sv.Min), mtoa(sv.Mean), mtoa(sv.Max), mtoa(sv.Ratio))
			}
			row = append(row, mtoa(st.SamplingDensity), mtoa(st.ThicknessToLength))
			err := emit(row)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSegmentsCSV writes one row per segment; axis is blank for unaligned segments.
func WriteSegmentsCSV(pathname string, R *analysis.Report) error {
	return writeCSV(pathname, SegmentsHeader, func(emit func([]string) error) error {
		for _, sm := range R.Segments {
			axis := ""
			if sm.Aligned {
				axis = sm.Axis.String()
			}
			err := emit([]string{
				strconv.Itoa(sm.Section),
				strconv.Itoa(sm.Index),
				ftoa(sm.Length),
				ftoa(sm.LateralArea),
				ftoa(sm.SurfaceArea),
				ftoa(sm.Volume),
				ftoa(sm.Midpoint.X),
				ftoa(sm.Midpoint.Y),
				ftoa(sm.Midpoint.Z),
				axis,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSpatialCSV writes value,x,y,z rows of a spatial distribution.
func WriteSpatialCSV(pathname string, sd *analysis.SpatialDistribution) error {
	return writeCSV(pathname, SpatialHeader, func(emit func([]string) error) error {
		for _, rec := range sd.Records {
			if err := emit([]string{ftoa(rec.Value), ftoa(rec.X), ftoa(rec.Y), ftoa(rec.Z)}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteCSV writes every table of R into dir, each named after base, and returns the paths written.
func WriteCSV(dir, base string, R *analysis.Report) ([]string, error) {
	var written []string
	put := func(name string, fn func(pathname string) error) error {
		pathname := filepath.Join(dir, base+"_"+name+".csv")
		if err := fn(pathname); err != nil {
			return err
		}
		written = append(written, pathname)
		return nil
	}

	if err := put("sections", func(p string) error { return WriteSectionsCSV(p, R) }); err != nil {
		return written, err
	}
	if err := put("segments", func(p string) error { return WriteSegmentsCSV(p, R) }); err != nil {
		return written, err
	}
	for i := range R.Spatial {
		sd := &R.Spatial[i]
		if err := put("spatial_"+sd.Name, func(p string) error { return WriteSpatialCSV(p, sd) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

// Summary is the YAML form of a report.
type Summary struct {
	Name          string                 `yaml:"name"`
	Totals        Totals                 `yaml:"totals"`
	Alignment     Alignment              `yaml:"alignment"`
	Distributions map[string]Description `yaml:"distributions"`
}

type Totals struct {
	Samples     int     `yaml:"samples"`
	Sections    int     `yaml:"sections"`
	Segments    int     `yaml:"segments"`
	Length      float64 `yaml:"length"`
	SurfaceArea float64 `yaml:"surface_area"`
	Volume      float64 `yaml:"volume"`
	ZeroRadius  int     `yaml:"zero_radius_samples"`
	Degenerate  int     `yaml:"degenerate_sections"`
	Short       int     `yaml:"short_sections"`
}

type Alignment struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Z     float64 `yaml:"z"`
	Other float64 `yaml:"other"`
	Ties  int     `yaml:"ties"`
}

type Description struct {
	Entity string  `yaml:"entity"`
	N      int     `yaml:"n"`
	Mean   float64 `yaml:"mean"`
	StdDev float64 `yaml:"stddev"`
	Min    float64 `yaml:"min"`
	Q1     float64 `yaml:"q1"`
	Median float64 `yaml:"median"`
	Q3     float64 `yaml:"q3"`
	Max    float64 `yaml:"max"`
}

// Summarize converts R into its YAML form.
func Summarize(R *analysis.Report) *Summary {
	T, A := R.Totals, R.Alignment
	S := &Summary{
		Name: R.Name,
		Totals: Totals{
			Samples:     T.NumSamples,
			Sections:    T.NumSections,
			Segments:    T.NumSegments,
			Length:      T.Length,
			SurfaceArea: T.SurfaceArea,
			Volume:      T.Volume,
			ZeroRadius:  T.NumZeroRadius,
			Degenerate:  T.NumDegenerate,
			Short:       T.NumShort,
		},
		Alignment:     Alignment{X: A.X, Y: A.Y, Z: A.Z, Other: A.Other, Ties: A.Ties},
		Distributions: make(map[string]Description, len(R.Distributions)),
	}
	for _, d := range R.Distributions {
		s := d.Summary
		S.Distributions[d.Name] = Description{
			Entity: d.Entity,
			N:      s.N,
			Mean:   s.Mean,
			StdDev: s.StdDev,
			Min:    s.Min,
			Q1:     s.Q1,
			Median: s.Median,
			Q3:     s.Q3,
			Max:    s.Max,
		}
	}
	return S
}

// WriteSummaryYAML writes Summarize(R) to pathname.
func WriteSummaryYAML(pathname string, R *analysis.Report) error {
	return textio.WriteFile(pathname, func(out *bufio.Writer) error {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(Summarize(R)); err != nil {
			return err
		}
		return enc.Close()
	})
}
