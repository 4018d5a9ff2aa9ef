package processes

import "time"

// Timestamps are rendered the same way the framework prints them,
// e.g. 2014-03-01 10:00:00 UTC+0000
const TimeFormat = "2006-01-02 15:04:05 UTC-0700"

// FormatTime returns an empty string for absent timestamps.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeFormat)
}

func ParseTime(value string) (time.Time, error) {
	t, err := time.Parse(TimeFormat, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
