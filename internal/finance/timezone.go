package finance

import "time"

// exchangeLocation resolves the exchange timezone reported by Yahoo, falling
// back to America/New_York and then to fixed EST if tzdata is missing.
func exchangeLocation(name string) *time.Location {
	if name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*3600)
	}
	return loc
}
