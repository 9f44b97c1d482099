package calculator

// Resample spreads the series onto a contiguous calendar-day grid from its
// first to its last date, carrying the last known price into gap days. The
// first day always holds an observation, so no leading day is left empty.
func Resample(s PriceSeries) PriceSeries {
	if len(s.points) < 2 {
		return s
	}
	first := s.points[0].Date
	last := s.points[len(s.points)-1].Date
	days := int(last.Sub(first).Hours()/24) + 1

	out := make([]PricePoint, 0, days)
	next := 0
	price := s.points[0].Price
	for i := 0; i < days; i++ {
		day := first.AddDate(0, 0, i)
		if next < len(s.points) && s.points[next].Date.Equal(day) {
			price = s.points[next].Price
			next++
		}
		out = append(out, PricePoint{Date: day, Price: price})
	}
	return PriceSeries{points: out}
}
