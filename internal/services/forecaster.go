package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stargazer/internal/config"
	"stargazer/internal/models"
	"stargazer/pkg/jsontree"
	"stargazer/pkg/lunar"
)

// WeatherClient fetches an hourly forecast document for a coordinate pair.
type WeatherClient interface {
	HourlyForecast(ctx context.Context, lat, lon float64) (map[string]any, error)
}

// Forecaster combines the lunar illumination series with nighttime sky
// averages and selects the dates worth stargazing.
type Forecaster struct {
	weather    WeatherClient
	logger     *zap.Logger
	latitude   float64
	longitude  float64
	startHour  int
	endHour    int
	thresholds models.Thresholds
	lunarFn    func(time.Time) []models.LunarDay
	now        func() time.Time
}

func NewForecaster(cfg *config.Config, weather WeatherClient, logger *zap.Logger) *Forecaster {
	return &Forecaster{
		weather:   weather,
		logger:    logger,
		latitude:  cfg.Location.Latitude,
		longitude: cfg.Location.Longitude,
		startHour: cfg.Forecast.NightStartHour,
		endHour:   cfg.Forecast.NightEndHour,
		thresholds: models.Thresholds{
			Illumination: cfg.Forecast.IllumThreshold,
			Visibility:   cfg.Forecast.VisThreshold,
			CloudCover:   cfg.Forecast.CoverThreshold,
		},
		lunarFn: lunar.Forecast,
		now:     time.Now,
	}
}

// LunarForecast returns the illumination series for the current window.
func (f *Forecaster) LunarForecast() []models.LunarDay {
	return f.lunarFn(f.now())
}

// SkyForecast fetches the hourly forecast and reduces it to one averaged
// record per calendar day, using only samples inside the nighttime window.
func (f *Forecaster) SkyForecast(ctx context.Context) ([]models.SkyDay, error) {
	doc, err := f.weather.HourlyForecast(ctx, f.latitude, f.longitude)
	if err != nil {
		return nil, fmt.Errorf("sky forecast fetch failed: %w", err)
	}

	samples, err := parseHourlySamples(doc)
	if err != nil {
		return nil, err
	}

	days := aggregateSky(samples, f.startHour, f.endHour)

	f.logger.Debug("Sky forecast aggregated",
		zap.Int("samples", len(samples)),
		zap.Int("days", len(days)))

	return days, nil
}

// Evaluate runs the full pipeline: lunar series, dark-night selection, sky
// averages, and the three-threshold intersection. When no night is a
// candidate the sky forecast is never fetched.
func (f *Forecaster) Evaluate(ctx context.Context) (*models.Report, error) {
	lunarDays := f.LunarForecast()

	report := &models.Report{
		EvaluatedAt:     f.now(),
		Thresholds:      f.thresholds,
		Lunar:           lunarDays,
		DarkDates:       []string{},
		StargazingDates: []string{},
	}

	darkSet := make(map[string]bool, len(lunarDays))
	for _, day := range lunarDays {
		if day.IllumPct >= f.thresholds.Illumination {
			darkSet[day.Date] = true
			report.DarkDates = append(report.DarkDates, day.Date)
		}
	}

	if len(darkSet) == 0 {
		f.logger.Info("No candidate nights in lunar window, skipping sky forecast")
		return report, nil
	}

	sky, err := f.SkyForecast(ctx)
	if err != nil {
		return nil, err
	}
	report.Sky = sky

	for _, day := range sky {
		if !darkSet[day.Date] {
			continue
		}
		if day.VisibilityAvg > f.thresholds.Visibility && day.CloudCoverAvg < f.thresholds.CloudCover {
			report.StargazingDates = append(report.StargazingDates, day.Date)
		}
	}

	f.logger.Info("Forecast evaluated",
		zap.Int("dark_nights", len(report.DarkDates)),
		zap.Int("stargazing_dates", len(report.StargazingDates)))

	return report, nil
}

// parseHourlySamples navigates the provider document to the hourly timeline
// and zips its time/visibility/cloudCover fields into samples. Missing or
// mismatched fields are reported as parse errors naming the field.
func parseHourlySamples(doc map[string]any) ([]models.HourlySample, error) {
	timelines, ok := doc["timelines"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("forecast response missing %q object", "timelines")
	}
	hourly, ok := timelines["hourly"]
	if !ok {
		return nil, fmt.Errorf("forecast response missing %q array", "timelines.hourly")
	}

	times := jsontree.Extract(hourly, "time")
	visibility := jsontree.Extract(hourly, "visibility")
	cloudCover := jsontree.Extract(hourly, "cloudCover")

	if len(times) == 0 {
		return nil, fmt.Errorf("forecast response has no %q entries", "time")
	}
	if len(visibility) != len(times) {
		return nil, fmt.Errorf("forecast response field %q has %d entries, expected %d",
			"visibility", len(visibility), len(times))
	}
	if len(cloudCover) != len(times) {
		return nil, fmt.Errorf("forecast response field %q has %d entries, expected %d",
			"cloudCover", len(cloudCover), len(times))
	}

	samples := make([]models.HourlySample, 0, len(times))
	for i := range times {
		raw, ok := times[i].(string)
		if !ok {
			return nil, fmt.Errorf("forecast entry %d: %q is not a string", i, "time")
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("forecast entry %d: bad timestamp %q: %w", i, raw, err)
		}
		vis, ok := visibility[i].(float64)
		if !ok {
			return nil, fmt.Errorf("forecast entry %d: %q is not a number", i, "visibility")
		}
		cover, ok := cloudCover[i].(float64)
		if !ok {
			return nil, fmt.Errorf("forecast entry %d: %q is not a number", i, "cloudCover")
		}
		samples = append(samples, models.HourlySample{
			Timestamp:  ts,
			Visibility: vis,
			CloudCover: cover,
		})
	}

	return samples, nil
}

// aggregateSky folds chronological samples into per-day averages. State is
// the day currently accumulating; a date change flushes the previous day,
// and the final day is flushed explicitly after the loop. Days with no
// in-window samples produce no record.
func aggregateSky(samples []models.HourlySample, startHour, endHour int) []models.SkyDay {
	days := make([]models.SkyDay, 0, lunar.ForecastDays)

	var currentDate string
	var vis, cover []float64

	flush := func() {
		if currentDate == "" || len(vis) == 0 {
			return
		}
		days = append(days, models.SkyDay{
			Date:          currentDate,
			VisibilityAvg: mean(vis),
			CloudCoverAvg: mean(cover),
		})
	}

	for _, s := range samples {
		ts := s.Timestamp.UTC()
		hour := ts.Hour()
		if hour < startHour || hour >= endHour {
			continue
		}

		date := ts.Format(models.DateFormat)
		if date != currentDate {
			flush()
			currentDate = date
			vis = nil
			cover = nil
		}

		vis = append(vis, s.Visibility)
		cover = append(cover, s.CloudCover)
	}

	flush()
	return days
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
