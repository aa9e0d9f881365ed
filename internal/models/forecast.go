package models

import (
	"time"
)

// DateFormat is the calendar-date layout used for all forecast keys.
const DateFormat = "2006-01-02"

type LunarDay struct {
	Date         string  `json:"date"`
	IllumPct     float64 `json:"illumination_pct"`
	DistanceKm   float64 `json:"distance_km"`
	GeoLongitude float64 `json:"geocentric_longitude"`
	GeoLatitude  float64 `json:"geocentric_latitude"`
}

// HourlySample is one raw record from the weather provider's hourly timeline.
type HourlySample struct {
	Timestamp  time.Time `json:"timestamp"`
	Visibility float64   `json:"visibility"`
	CloudCover float64   `json:"cloud_cover"`
}

// SkyDay holds the nighttime-window averages for a single calendar day.
type SkyDay struct {
	Date          string  `json:"date"`
	VisibilityAvg float64 `json:"visibility_avg"`
	CloudCoverAvg float64 `json:"cloud_cover_avg"`
}

// Thresholds are the three predicates a stargazing date must satisfy.
// IllumPct >= Illumination selects candidate nights; callers pass a low
// threshold so the comparison picks out near-new-moon dates.
type Thresholds struct {
	Illumination float64 `json:"illumination"`
	Visibility   float64 `json:"visibility"`
	CloudCover   float64 `json:"cloud_cover"`
}

// Report is the full result of one forecast evaluation.
type Report struct {
	EvaluatedAt      time.Time  `json:"evaluated_at"`
	Thresholds       Thresholds `json:"thresholds"`
	Lunar            []LunarDay `json:"lunar"`
	Sky              []SkyDay   `json:"sky,omitempty"`
	DarkDates        []string   `json:"dark_dates"`
	StargazingDates  []string   `json:"stargazing_dates"`
	NotificationSent bool       `json:"notification_sent"`
}
