package model

import (
	"strings"
	"time"
)

// TimeRange 리더보드 조회 기간.
type TimeRange string

// TimeRangeAll 는 리더보드 조회 기간 상수 목록이다.
const (
	TimeRangeAll   TimeRange = "all"
	TimeRangeToday TimeRange = "today"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeYear  TimeRange = "year"
)

// ParseTimeRange: 문자열을 TimeRange 로 변환한다. 빈 문자열은 all 이다.
func ParseTimeRange(raw string) (TimeRange, bool) {
	switch tr := TimeRange(strings.ToLower(strings.TrimSpace(raw))); tr {
	case "":
		return TimeRangeAll, true
	case TimeRangeAll, TimeRangeToday, TimeRangeWeek, TimeRangeMonth, TimeRangeYear:
		return tr, true
	default:
		return "", false
	}
}

// Window: 기간 길이. all 은 0 (무제한)
func (t TimeRange) Window() time.Duration {
	const day = 24 * time.Hour
	switch t {
	case TimeRangeToday:
		return day
	case TimeRangeWeek:
		return 7 * day
	case TimeRangeMonth:
		return 30 * day
	case TimeRangeYear:
		return 365 * day
	default:
		return 0
	}
}

// Since: now 기준 기간 시작 시각. all 이면 zero time.
func (t TimeRange) Since(now time.Time) time.Time {
	w := t.Window()
	if w == 0 {
		return time.Time{}
	}
	return now.Add(-w)
}

// Classify: 기록 시각이 속하는 가장 좁은 기간을 반환한다.
func Classify(date time.Time, now time.Time) TimeRange {
	for _, tr := range []TimeRange{TimeRangeToday, TimeRangeWeek, TimeRangeMonth, TimeRangeYear} {
		if !date.Before(tr.Since(now)) {
			return tr
		}
	}
	return TimeRangeAll
}
