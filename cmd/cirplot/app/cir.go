package app

import (
	"math"
	"sort"

	"github.com/span-lab/uwb-radar/internal/capture"
)

// floorDB stands in for the magnitude of an all-zero sample so log scaling
// stays finite.
const floorDB = -20.0

// MagnitudeBounds is the dB range mapped onto the color scale.
type MagnitudeBounds struct {
	Min, Max float64
}

// CIRData is the frame-by-tap magnitude matrix built from a set of record
// files. Rows are ordered by frame index; every row holds one frame's CIR
// magnitudes in dB.
type CIRData struct {
	Width, Height int
	FrameIndexes  []int32
	Rows          [][]float64
	Bounds        MagnitudeBounds
}

// NewCIRData builds the matrix from decoded records. Records are sorted by
// frame index; bounds track the observed dB range.
func NewCIRData(records []*capture.Record) *CIRData {
	sorted := make([]*capture.Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].FrameIndex < sorted[j].FrameIndex
	})

	d := &CIRData{
		Bounds: MagnitudeBounds{Min: math.MaxFloat64, Max: -math.MaxFloat64},
	}
	for _, rec := range sorted {
		row := make([]float64, len(rec.CIR))
		for i, s := range rec.CIR {
			row[i] = magnitudeDB(s)
			d.Bounds.Min = math.Min(d.Bounds.Min, row[i])
			d.Bounds.Max = math.Max(d.Bounds.Max, row[i])
		}
		d.Width = max(d.Width, len(row))
		d.Height++
		d.FrameIndexes = append(d.FrameIndexes, rec.FrameIndex)
		d.Rows = append(d.Rows, row)
	}
	return d
}

// magnitudeDB is the complex sample magnitude on a log scale:
// 20*log10(|re + j*im|), floored for zero samples.
func magnitudeDB(s capture.Sample) float64 {
	mag := math.Hypot(float64(s.Real), float64(s.Imag))
	if mag < 1 {
		return floorDB
	}
	return 20 * math.Log10(mag)
}
