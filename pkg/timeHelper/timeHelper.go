package timehelper

import (
	"strconv"
	"time"
)

// RecentWindow is how far back "recent" entries reach for admin purges.
const RecentWindow = 24 * time.Hour

func CurrentSeason(now time.Time) int {
	return now.Year()
}

// SeasonFromEventCode reads the season from an event code such as
// "2025miket". Codes without a four digit prefix fall back to now's year.
func SeasonFromEventCode(code string, now time.Time) int {
	if len(code) >= 4 {
		if year, err := strconv.Atoi(code[:4]); err == nil && year > 0 {
			return year
		}
	}
	return CurrentSeason(now)
}

// RecentSince returns the start of the recent window ending at now.
func RecentSince(now time.Time) time.Time {
	return now.Add(-RecentWindow)
}
