package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stargazer/internal/models"
)

type stubWeather struct {
	doc   map[string]any
	err   error
	calls int
}

func (s *stubWeather) HourlyForecast(ctx context.Context, lat, lon float64) (map[string]any, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.doc, nil
}

func hourlyEntry(ts string, vis, cover float64) map[string]any {
	return map[string]any{
		"time": ts,
		"values": map[string]any{
			"visibility": vis,
			"cloudCover": cover,
		},
	}
}

func hourlyDoc(entries ...map[string]any) map[string]any {
	hourly := make([]any, 0, len(entries))
	for _, e := range entries {
		hourly = append(hourly, e)
	}
	return map[string]any{
		"timelines": map[string]any{
			"hourly": hourly,
		},
	}
}

func lunarSeries(start string, illums ...float64) []models.LunarDay {
	t, _ := time.Parse(models.DateFormat, start)
	days := make([]models.LunarDay, 0, len(illums))
	for i, illum := range illums {
		days = append(days, models.LunarDay{
			Date:     t.AddDate(0, 0, i).Format(models.DateFormat),
			IllumPct: illum,
		})
	}
	return days
}

func newTestForecaster(weather WeatherClient, lunarDays []models.LunarDay, th models.Thresholds) *Forecaster {
	return &Forecaster{
		weather:    weather,
		logger:     zap.NewNop(),
		startHour:  6,
		endHour:    13,
		thresholds: th,
		lunarFn: func(time.Time) []models.LunarDay {
			return lunarDays
		},
		now: func() time.Time {
			return time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
		},
	}
}

func TestAggregateSkyWindowAndAverages(t *testing.T) {
	samples := []models.HourlySample{
		{Timestamp: mustParse(t, "2025-03-05T04:00:00Z"), Visibility: 99, CloudCover: 99}, // before window
		{Timestamp: mustParse(t, "2025-03-05T06:00:00Z"), Visibility: 20, CloudCover: 2},
		{Timestamp: mustParse(t, "2025-03-05T07:00:00Z"), Visibility: 30, CloudCover: 4},
		{Timestamp: mustParse(t, "2025-03-05T13:00:00Z"), Visibility: 99, CloudCover: 99}, // end hour excluded
		{Timestamp: mustParse(t, "2025-03-06T06:00:00Z"), Visibility: 10, CloudCover: 50},
	}

	days := aggregateSky(samples, 6, 13)

	require.Len(t, days, 2)
	require.Equal(t, models.SkyDay{Date: "2025-03-05", VisibilityAvg: 25, CloudCoverAvg: 3}, days[0])
	require.Equal(t, models.SkyDay{Date: "2025-03-06", VisibilityAvg: 10, CloudCoverAvg: 50}, days[1])
}

func TestAggregateSkyFinalDayIncluded(t *testing.T) {
	// No boundary sample follows the last day; it must still be flushed
	samples := []models.HourlySample{
		{Timestamp: mustParse(t, "2025-03-05T06:00:00Z"), Visibility: 12, CloudCover: 6},
		{Timestamp: mustParse(t, "2025-03-05T08:00:00Z"), Visibility: 18, CloudCover: 8},
	}

	days := aggregateSky(samples, 6, 13)

	require.Len(t, days, 1)
	require.Equal(t, "2025-03-05", days[0].Date)
	require.Equal(t, 15.0, days[0].VisibilityAvg)
	require.Equal(t, 7.0, days[0].CloudCoverAvg)
}

func TestAggregateSkyEmptyDaySkipped(t *testing.T) {
	// The middle day has samples only outside the window; it must be absent,
	// with no division fault
	samples := []models.HourlySample{
		{Timestamp: mustParse(t, "2025-03-05T06:00:00Z"), Visibility: 20, CloudCover: 2},
		{Timestamp: mustParse(t, "2025-03-06T02:00:00Z"), Visibility: 99, CloudCover: 99},
		{Timestamp: mustParse(t, "2025-03-06T20:00:00Z"), Visibility: 99, CloudCover: 99},
		{Timestamp: mustParse(t, "2025-03-07T06:00:00Z"), Visibility: 25, CloudCover: 1},
	}

	days := aggregateSky(samples, 6, 13)

	require.Len(t, days, 2)
	require.Equal(t, "2025-03-05", days[0].Date)
	require.Equal(t, "2025-03-07", days[1].Date)
}

func TestAggregateSkyNoSamples(t *testing.T) {
	require.Empty(t, aggregateSky(nil, 6, 13))
}

func TestAggregateSkyIdempotent(t *testing.T) {
	samples := []models.HourlySample{
		{Timestamp: mustParse(t, "2025-03-05T06:00:00Z"), Visibility: 20, CloudCover: 2},
		{Timestamp: mustParse(t, "2025-03-05T07:00:00Z"), Visibility: 24, CloudCover: 4},
		{Timestamp: mustParse(t, "2025-03-06T09:00:00Z"), Visibility: 16, CloudCover: 8},
	}

	first := aggregateSky(samples, 6, 13)
	second := aggregateSky(samples, 6, 13)

	require.Equal(t, first, second)
}

func TestParseHourlySamples(t *testing.T) {
	doc := hourlyDoc(
		hourlyEntry("2025-03-05T06:00:00Z", 20, 2),
		hourlyEntry("2025-03-05T07:00:00Z", 30, 4),
	)

	samples, err := parseHourlySamples(doc)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Equal(t, 20.0, samples[0].Visibility)
	require.Equal(t, 4.0, samples[1].CloudCover)
	require.Equal(t, mustParse(t, "2025-03-05T07:00:00Z"), samples[1].Timestamp)
}

func TestParseHourlySamplesErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{
			name: "missing timelines",
			doc:  map[string]any{"other": 1},
			want: "timelines",
		},
		{
			name: "missing hourly",
			doc:  map[string]any{"timelines": map[string]any{"daily": []any{}}},
			want: "timelines.hourly",
		},
		{
			name: "no time entries",
			doc:  map[string]any{"timelines": map[string]any{"hourly": []any{}}},
			want: `"time"`,
		},
		{
			name: "mismatched visibility",
			doc: map[string]any{"timelines": map[string]any{"hourly": []any{
				map[string]any{"time": "2025-03-05T06:00:00Z", "values": map[string]any{"cloudCover": 2.0}},
			}}},
			want: "visibility",
		},
		{
			name: "bad timestamp",
			doc: hourlyDoc(
				hourlyEntry("not-a-time", 20, 2),
			),
			want: "timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseHourlySamples(tt.doc)
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEvaluateSelectsQualifyingDates(t *testing.T) {
	// Illuminations over D0..D5; with threshold 2 the candidate set is
	// D1..D5 (IllumPct >= threshold). D0 would pass the sky thresholds but
	// is not a candidate; D1 fails visibility; D2 passes; D5 fails cover.
	lunarDays := lunarSeries("2025-03-05", 1, 2, 50, 80, 99, 10)

	weather := &stubWeather{doc: hourlyDoc(
		hourlyEntry("2025-03-05T06:00:00Z", 25, 3),
		hourlyEntry("2025-03-06T06:00:00Z", 18, 2),
		hourlyEntry("2025-03-07T06:00:00Z", 20, 2),
		hourlyEntry("2025-03-07T07:00:00Z", 30, 4),
		hourlyEntry("2025-03-10T06:00:00Z", 30, 10),
	)}

	f := newTestForecaster(weather, lunarDays, models.Thresholds{
		Illumination: 2,
		Visibility:   20,
		CloudCover:   5,
	})

	report, err := f.Evaluate(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, weather.calls)
	require.Equal(t, []string{"2025-03-06", "2025-03-07", "2025-03-08", "2025-03-09", "2025-03-10"}, report.DarkDates)
	require.Equal(t, []string{"2025-03-07"}, report.StargazingDates)
}

func TestEvaluateShortCircuitsWithoutCandidates(t *testing.T) {
	// Every night below the illumination threshold: the sky forecast must
	// never be fetched and the result is empty
	lunarDays := lunarSeries("2025-03-05", 0.1, 0.5, 1.0, 1.5, 1.9, 0.8)

	weather := &stubWeather{doc: hourlyDoc()}

	f := newTestForecaster(weather, lunarDays, models.Thresholds{
		Illumination: 2,
		Visibility:   20,
		CloudCover:   5,
	})

	report, err := f.Evaluate(context.Background())
	require.NoError(t, err)

	require.Zero(t, weather.calls)
	require.Empty(t, report.DarkDates)
	require.Empty(t, report.StargazingDates)
	require.Nil(t, report.Sky)
}

func TestEvaluateThresholdMonotonicity(t *testing.T) {
	lunarDays := lunarSeries("2025-03-05", 5, 10, 20, 40, 80, 99)

	doc := hourlyDoc(
		hourlyEntry("2025-03-05T06:00:00Z", 22, 1),
		hourlyEntry("2025-03-06T06:00:00Z", 28, 3),
		hourlyEntry("2025-03-07T06:00:00Z", 35, 4.5),
		hourlyEntry("2025-03-08T06:00:00Z", 21, 0.5),
	)

	run := func(vis, cover float64) []string {
		f := newTestForecaster(&stubWeather{doc: doc}, lunarDays, models.Thresholds{
			Illumination: 2,
			Visibility:   vis,
			CloudCover:   cover,
		})
		report, err := f.Evaluate(context.Background())
		require.NoError(t, err)
		return report.StargazingDates
	}

	base := run(20, 5)

	// Raising the visibility threshold can only shrink the result
	require.Subset(t, base, run(25, 5))

	// Lowering the cover threshold can only shrink the result
	require.Subset(t, base, run(20, 2))
}

func TestEvaluateWeatherFailure(t *testing.T) {
	lunarDays := lunarSeries("2025-03-05", 50, 60, 70, 80, 90, 99)

	weather := &stubWeather{err: context.DeadlineExceeded}
	f := newTestForecaster(weather, lunarDays, models.Thresholds{Illumination: 2, Visibility: 20, CloudCover: 5})

	_, err := f.Evaluate(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", value, err)
	}
	return ts
}
