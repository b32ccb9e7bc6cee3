package calendar

import "time"

var moscow = loadMoscow()

// Moscow returns the campus timezone. Week arithmetic and bot replies are
// anchored to it regardless of the server locale.
func Moscow() *time.Location {
	return moscow
}

func loadMoscow() *time.Location {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		// Containers without tzdata still get the right offset; Moscow
		// has not observed DST since 2014.
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}
