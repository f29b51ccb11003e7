// Package analytics aggregates stored outcomes for reporting: overview
// totals, per-job splits and time-bucketed trends.
package analytics

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ignite/propensity-engine/internal/domain"
)

// ErrUnknownGranularity is returned for a granularity other than day, week
// or month.
var ErrUnknownGranularity = errors.New("unknown granularity")

// Granularity is the width of a trend bucket.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts day, week or month. Empty input means month.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return Month, nil
	case Day, Week, Month:
		return g, nil
	default:
		return "", fmt.Errorf("%w %q (want day, week or month)", ErrUnknownGranularity, s)
	}
}

// Outcome is the slice of a stored prediction the trend needs.
type Outcome struct {
	Class     domain.PredictedClass
	Timestamp time.Time
}

// TrendPoint is one bucket of the trend.
type TrendPoint struct {
	Bucket string `json:"bucket"`
	Yes    int    `json:"yes"`
	No     int    `json:"no"`
}

// BucketKey formats t as the key of its bucket, in UTC.
func BucketKey(t time.Time, g Granularity) string {
	t = t.UTC()
	switch g {
	case Day:
		return t.Format("2006-01-02")
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return t.Format("2006-01")
	}
}

// Bucket counts outcomes per bucket. Only buckets holding at least one
// outcome appear and they are sorted by key, which is chronological.
func Bucket(outcomes []Outcome, g Granularity) []TrendPoint {
	byKey := make(map[string]*TrendPoint)
	for _, o := range outcomes {
		key := BucketKey(o.Timestamp, g)
		p, ok := byKey[key]
		if !ok {
			p = &TrendPoint{Bucket: key}
			byKey[key] = p
		}
		switch o.Class {
		case domain.ClassYes:
			p.Yes++
		case domain.ClassNo:
			p.No++
		}
	}

	points := make([]TrendPoint, 0, len(byKey))
	for _, p := range byKey {
		points = append(points, *p)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Bucket < points[j].Bucket })
	return points
}
