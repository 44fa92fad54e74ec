package baseline

import "time"

// TimeBucket names a time-of-day partition
type TimeBucket string

const (
	TimeMorning   TimeBucket = "morning"   // 06:00-11:59
	TimeAfternoon TimeBucket = "afternoon" // 12:00-17:59
	TimeEvening   TimeBucket = "evening"   // 18:00-23:59
	TimeOverall   TimeBucket = "overall"   // 00:00-05:59 update the overall bucket only
)

// ContextBucket names a situational partition
type ContextBucket string

const (
	ContextWorkday  ContextBucket = "workday"
	ContextWeekend  ContextBucket = "weekend"
	ContextMeetings ContextBucket = "meetings"
	ContextCasual   ContextBucket = "casual"
)

// Selection is the pair of buckets an observation at a given time maps to
type Selection struct {
	Time    TimeBucket    `json:"time"`
	Context ContextBucket `json:"context"`
}

// SelectTimeBucket maps a local hour (0-23) to its time bucket
func SelectTimeBucket(hour int) TimeBucket {
	switch {
	case hour >= 6 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 18:
		return TimeAfternoon
	case hour >= 18 && hour < 24:
		return TimeEvening
	default:
		return TimeOverall
	}
}

// SelectContextBucket maps a weekday to workday or weekend
func SelectContextBucket(day time.Weekday) ContextBucket {
	switch day {
	case time.Saturday, time.Sunday:
		return ContextWeekend
	default:
		return ContextWorkday
	}
}

// Select returns the buckets for t in loc
func Select(t time.Time, loc *time.Location) Selection {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return Selection{
		Time:    SelectTimeBucket(local.Hour()),
		Context: SelectContextBucket(local.Weekday()),
	}
}

// bucketHours lists the hours covered by a time bucket
func bucketHours(b TimeBucket) []int {
	var start int
	switch b {
	case TimeMorning:
		start = 6
	case TimeAfternoon:
		start = 12
	case TimeEvening:
		start = 18
	default:
		return nil
	}
	hours := make([]int, 6)
	for i := range hours {
		hours[i] = start + i
	}
	return hours
}
