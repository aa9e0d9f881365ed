// Package lunar computes a short-range moon forecast from truncated Meeus
// series: illuminated fraction from the Sun/Moon elongation, plus geocentric
// distance and ecliptic coordinates. Accuracy is on the order of ~0.5-1%
// illumination and a few hundred km of distance, which is ample for picking
// dark nights.
package lunar

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"

	"stargazer/internal/models"
)

// ForecastDays is the number of days in one forecast window: today plus five
// lookahead days, one day of padding beyond the sky-forecast horizon.
const ForecastDays = 6

// Forecast returns one LunarDay per day for now and the next ForecastDays-1
// days, ascending by date. Dates are formatted as calendar dates in UTC.
func Forecast(now time.Time) []models.LunarDay {
	days := make([]models.LunarDay, 0, ForecastDays)
	for i := 0; i < ForecastDays; i++ {
		t := now.UTC().AddDate(0, 0, i)
		jd := julian.TimeToJD(t)
		T := julianCenturies(jd)

		lambdaMoon := moonEclipticLongitude(T)
		betaMoon := moonEclipticLatitude(T)
		elongation := normalizeAngle(lambdaMoon - sunEclipticLongitude(T))
		illum := (1 - math.Cos(degToRad(elongation))) / 2

		days = append(days, models.LunarDay{
			Date:         t.Format(models.DateFormat),
			IllumPct:     illum * 100,
			DistanceKm:   moonDistance(T),
			GeoLongitude: lambdaMoon,
			GeoLatitude:  betaMoon,
		})
	}
	return days
}

// julianCenturies returns Julian centuries since J2000.0
func julianCenturies(jd float64) float64 {
	return (jd - 2451545.0) / 36525.0
}

// normalizeAngle wraps an angle to the range [0, 360)
func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 360)
	if angle < 0 {
		angle += 360
	}
	return angle
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// sunEclipticLongitude computes the Sun's ecliptic longitude in degrees
func sunEclipticLongitude(T float64) float64 {
	// Mean longitude
	L0 := 280.46646 + 36000.76983*T + 0.0003032*T*T

	Mrad := degToRad(sunMeanAnomaly(T))

	// Equation of center
	C := (1.914602-0.004817*T-0.000014*T*T)*math.Sin(Mrad) +
		(0.019993-0.000101*T)*math.Sin(2*Mrad) +
		0.000289*math.Sin(3*Mrad)

	return normalizeAngle(L0 + C)
}

// sunMeanAnomaly computes the Sun's mean anomaly in degrees
func sunMeanAnomaly(T float64) float64 {
	return normalizeAngle(357.52911 + 35999.05029*T - 0.0001537*T*T)
}

// moonMeanElongation computes the Moon's mean elongation from the Sun in degrees
func moonMeanElongation(T float64) float64 {
	return normalizeAngle(297.8501921 +
		445267.1114034*T -
		0.0018819*T*T +
		T*T*T/545868 -
		T*T*T*T/113065000)
}

// moonMeanAnomaly computes the Moon's mean anomaly in degrees
func moonMeanAnomaly(T float64) float64 {
	return normalizeAngle(134.9633964 +
		477198.8675055*T +
		0.0087414*T*T +
		T*T*T/69699 -
		T*T*T*T/14712000)
}

// moonArgumentOfLatitude computes the Moon's argument of latitude in degrees
func moonArgumentOfLatitude(T float64) float64 {
	return normalizeAngle(93.2720950 +
		483202.0175233*T -
		0.0036539*T*T -
		T*T*T/3526000 +
		T*T*T*T/863310000)
}

// moonEclipticLongitude computes the Moon's geocentric ecliptic longitude in
// degrees, using the dominant terms from Meeus Ch. 47.
func moonEclipticLongitude(T float64) float64 {
	// Mean longitude
	L := 218.3164477 +
		481267.88123421*T -
		0.0015786*T*T +
		T*T*T/538841 -
		T*T*T*T/65194000

	Drad := degToRad(moonMeanElongation(T))
	Mprad := degToRad(moonMeanAnomaly(T))

	lambda := L +
		6.289*math.Sin(Mprad) +
		1.274*math.Sin(2*Drad-Mprad) +
		0.658*math.Sin(2*Drad) +
		0.214*math.Sin(2*Mprad) +
		0.110*math.Sin(Drad)

	return normalizeAngle(lambda)
}

// moonEclipticLatitude computes the Moon's geocentric ecliptic latitude in
// degrees, using the dominant terms from Meeus Table 47.B.
func moonEclipticLatitude(T float64) float64 {
	Frad := degToRad(moonArgumentOfLatitude(T))
	Drad := degToRad(moonMeanElongation(T))
	Mprad := degToRad(moonMeanAnomaly(T))

	return 5.128*math.Sin(Frad) +
		0.2806*math.Sin(Mprad+Frad) +
		0.2777*math.Sin(Mprad-Frad) +
		0.1732*math.Sin(2*Drad-Frad)
}

// moonDistance computes the Earth-Moon distance in kilometers, using the
// dominant terms from Meeus Table 47.A. Range is roughly 356500-406700 km.
func moonDistance(T float64) float64 {
	Drad := degToRad(moonMeanElongation(T))
	Mrad := degToRad(sunMeanAnomaly(T))
	Mprad := degToRad(moonMeanAnomaly(T))
	Frad := degToRad(moonArgumentOfLatitude(T))

	return 385000.56 -
		20905.355*math.Cos(Mprad) -
		3699.111*math.Cos(2*Drad-Mprad) -
		2955.968*math.Cos(2*Drad) -
		569.925*math.Cos(2*Mprad) +
		48.888*math.Cos(Mrad) -
		3.149*math.Cos(2*Frad) +
		246.158*math.Cos(2*Drad-2*Mprad)
}
