package utils

import (
	"time"
)

func FormatTimestamp(t time.Time, now time.Time) string {
	if IsSameDay(t, now) {
		return "Today at " + t.Format("3:04 PM")
	}
	yesterday := now.AddDate(0, 0, -1)
	if IsSameDay(t, yesterday) {
		return "Yesterday at " + t.Format("3:04 PM")
	}
	return t.Format("Jan. 2, 2006, 3:04 PM")
}

func IsSameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
