package utils

import "time"

// FormatDisplayDate renders a timestamp the way list views display it.
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("02 Jan 2006 15:04")
}

// FormatDisplayDatePtr is FormatDisplayDate for pointer values.
func FormatDisplayDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDisplayDate(*t)
}
