package application

import "time"

const MinimumAge = 18

// AgeAt is the number of full years between dob and now.
func AgeAt(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// DuplicateWindowStart is the earliest submission time that still blocks a new
// application: now minus six calendar months.
func DuplicateWindowStart(now time.Time) time.Time {
	return now.AddDate(0, -6, 0)
}
