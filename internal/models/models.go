package models

import (
	"time"
)

type User struct {
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	IsActive    bool      `json:"is_active"`
	DateJoined  time.Time `json:"date_joined"`
}

type JoinedRange string

const (
	JoinedAny       JoinedRange = ""
	JoinedToday     JoinedRange = "today"
	JoinedPast7Days JoinedRange = "past_7_days"
	JoinedThisMonth JoinedRange = "this_month"
	JoinedThisYear  JoinedRange = "this_year"
)

// UserFilter mirrors the admin list filters. Nil pointers match anything.
type UserFilter struct {
	IsStaff     *bool
	IsSuperuser *bool
	IsActive    *bool
	Joined      JoinedRange
}

func (f UserFilter) Match(u User, now time.Time) bool {
	if f.IsStaff != nil && u.IsStaff != *f.IsStaff {
		return false
	}
	if f.IsSuperuser != nil && u.IsSuperuser != *f.IsSuperuser {
		return false
	}
	if f.IsActive != nil && u.IsActive != *f.IsActive {
		return false
	}
	return f.Joined.Contains(u.DateJoined, now)
}

// Key is a stable cache key for the filter.
func (f UserFilter) Key() string {
	b := func(p *bool) string {
		switch {
		case p == nil:
			return "-"
		case *p:
			return "1"
		default:
			return "0"
		}
	}
	return b(f.IsStaff) + b(f.IsSuperuser) + b(f.IsActive) + ":" + string(f.Joined)
}

func (r JoinedRange) Contains(t, now time.Time) bool {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var start time.Time
	switch r {
	case JoinedToday:
		start = today
	case JoinedPast7Days:
		start = today.AddDate(0, 0, -7)
	case JoinedThisMonth:
		start = time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	case JoinedThisYear:
		start = time.Date(y, 1, 1, 0, 0, 0, 0, now.Location())
	default:
		return true
	}
	return !t.Before(start) && !t.After(now)
}

func ParseJoinedRange(s string) (JoinedRange, bool) {
	switch r := JoinedRange(s); r {
	case JoinedAny, JoinedToday, JoinedPast7Days, JoinedThisMonth, JoinedThisYear:
		return r, true
	}
	return JoinedAny, false
}
