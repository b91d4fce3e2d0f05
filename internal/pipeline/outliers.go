package pipeline

import (
	"math"
	"path/filepath"
	"sort"

	"github.com/backmassage/vidmeta/internal/display"
	"github.com/backmassage/vidmeta/internal/logging"
	"github.com/backmassage/vidmeta/internal/report"
)

// iqrBounds holds the IQR-based thresholds for outlier classification.
type iqrBounds struct {
	q1, q3    float64
	outlierLo float64 // Q1 - 1.5*IQR
	outlierHi float64 // Q3 + 1.5*IQR
	extremeLo float64 // Q1 - 3.0*IQR
	extremeHi float64 // Q3 + 3.0*IQR
	valid     bool
}

func computeStats(vals []float64) iqrBounds {
	if len(vals) < 4 {
		return iqrBounds{}
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	q1 := percentile(sorted, 25)
	q3 := percentile(sorted, 75)
	iqr := q3 - q1

	return iqrBounds{
		q1:        q1,
		q3:        q3,
		outlierLo: q1 - 1.5*iqr,
		outlierHi: q3 + 1.5*iqr,
		extremeLo: q1 - 3.0*iqr,
		extremeHi: q3 + 3.0*iqr,
		valid:     iqr > 0,
	}
}

// classify returns "" (normal), "outlier", or "extreme" for a value.
func (b *iqrBounds) classify(v float64) string {
	if !b.valid || v <= 0 {
		return ""
	}
	if v < b.extremeLo || v > b.extremeHi {
		return "extreme"
	}
	if v < b.outlierLo || v > b.outlierHi {
		return "outlier"
	}
	return ""
}

// flagOutliers logs files whose video or audio bitrate falls outside the
// batch's interquartile fences and returns how many were flagged. Files
// with an unknown bitrate are never flagged.
func flagOutliers(log *logging.Logger, reports []report.Report) int {
	var videoVals, audioVals []float64
	for i := range reports {
		if v := videoRate(&reports[i]); v > 0 {
			videoVals = append(videoVals, v)
		}
		if a := audioRate(&reports[i]); a > 0 {
			audioVals = append(audioVals, a)
		}
	}
	vStats := computeStats(videoVals)
	aStats := computeStats(audioVals)
	if !vStats.valid && !aStats.valid {
		return 0
	}

	flagged := 0
	for i := range reports {
		r := &reports[i]
		vClass := vStats.classify(videoRate(r))
		aClass := aStats.classify(audioRate(r))
		worst := worstFlag(vClass, aClass)
		if worst == "" {
			continue
		}
		flagged++

		name := filepath.Base(r.Path)
		switch {
		case vClass != "":
			log.Warn("Bitrate %s: %s video at %s (batch IQR %s to %s)", worst, name,
				display.FormatBitrate(int64(videoRate(r))),
				display.FormatBitrate(int64(vStats.q1)), display.FormatBitrate(int64(vStats.q3)))
		default:
			log.Warn("Bitrate %s: %s audio at %s (batch IQR %s to %s)", worst, name,
				display.FormatBitrate(int64(audioRate(r))),
				display.FormatBitrate(int64(aStats.q1)), display.FormatBitrate(int64(aStats.q3)))
		}
	}
	return flagged
}

func videoRate(r *report.Report) float64 {
	if r.Video == nil || r.Video.BitRate == nil {
		return 0
	}
	return float64(*r.Video.BitRate)
}

func audioRate(r *report.Report) float64 {
	if r.Audio == nil || r.Audio.BitRate == nil {
		return 0
	}
	return float64(*r.Audio.BitRate)
}

func worstFlag(classes ...string) string {
	worst := ""
	for _, c := range classes {
		if c == "extreme" {
			return "extreme"
		}
		if c == "outlier" {
			worst = "outlier"
		}
	}
	return worst
}

// percentile computes the p-th percentile using linear interpolation.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p / 100) * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
