package protowire

import "time"

// The four date/time scalars share one convention: the wire value is
// the count of ticks since 0001-01-01 00:00:00 UTC, plus one, so that
// 0 denotes SQL NULL and 1 denotes the epoch itself.

const ticksPerDayLongDate = 24 * 60 * 60 * 10000000 // 100ns ticks/day
const ticksPerDaySecondDate = 24 * 60 * 60           // seconds/day

// julianDay returns the (proleptic Gregorian) Julian Day Number for y-m-d,
// via the Fliegel & Van Flandern algorithm.
func julianDay(y, m, d int) int64 {
	a := int64((14 - m) / 12)
	y2 := int64(y) + 4800 - a
	m2 := int64(m) + 12*a - 3
	return int64(d) + (153*m2+2)/5 + 365*y2 + y2/4 - y2/100 + y2/400 - 32045
}

// julianDayToDate is the inverse of julianDay.
func julianDayToDate(jd int64) (y, m, d int) {
	a := jd + 32044
	b := (4*a + 3) / 146097
	c := a - 146097*b/4
	dd := (4*c + 3) / 1461
	e := c - 1461*dd/4
	mm := (5*e + 2) / 153
	day := e - (153*mm+2)/5 + 1
	month := mm + 3 - 12*(mm/10)
	year := 100*b + dd - 4800 + mm/10
	return int(year), int(month), int(day)
}

var epochJDN = julianDay(1, 1, 1)

func secondsOfDay(t time.Time) int64 {
	return int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())
}

// LongDate is a 100-nanosecond-tick timestamp (the protocol's TIMESTAMP/LongDate scalar).
type LongDate int64

// EncodeLongDate converts t to its wire LongDate value.
func EncodeLongDate(t time.Time) LongDate {
	t = t.UTC()
	days := julianDay(t.Year(), int(t.Month()), t.Day()) - epochJDN
	ticks := days*ticksPerDayLongDate + secondsOfDay(t)*10000000 + int64(t.Nanosecond())/100
	return LongDate(ticks + 1)
}

// Time decodes a LongDate; ok is false for the NULL encoding (0).
func (v LongDate) Time() (t time.Time, ok bool) {
	if v == 0 {
		return time.Time{}, false
	}
	ticks := int64(v) - 1
	days := ticks / ticksPerDayLongDate
	rem := ticks % ticksPerDayLongDate
	if rem < 0 {
		days--
		rem += ticksPerDayLongDate
	}
	y, m, d := julianDayToDate(epochJDN + days)
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(rem) * 100 * time.Nanosecond), true
}

// SecondDate is a 1-second-resolution timestamp.
type SecondDate int64

// EncodeSecondDate converts t to its wire SecondDate value.
func EncodeSecondDate(t time.Time) SecondDate {
	t = t.UTC()
	days := julianDay(t.Year(), int(t.Month()), t.Day()) - epochJDN
	secs := days*ticksPerDaySecondDate + secondsOfDay(t)
	return SecondDate(secs + 1)
}

// Time decodes a SecondDate; ok is false for the NULL encoding (0).
func (v SecondDate) Time() (t time.Time, ok bool) {
	if v == 0 {
		return time.Time{}, false
	}
	secs := int64(v) - 1
	days := secs / ticksPerDaySecondDate
	rem := secs % ticksPerDaySecondDate
	if rem < 0 {
		days--
		rem += ticksPerDaySecondDate
	}
	y, m, d := julianDayToDate(epochJDN + days)
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(rem) * time.Second), true
}

// DayDate is a whole-day-resolution date.
type DayDate int32

// EncodeDayDate converts t (its date part) to its wire DayDate value.
func EncodeDayDate(t time.Time) DayDate {
	t = t.UTC()
	days := julianDay(t.Year(), int(t.Month()), t.Day()) - epochJDN
	return DayDate(days + 1)
}

// Time decodes a DayDate; ok is false for the NULL encoding (0).
func (v DayDate) Time() (t time.Time, ok bool) {
	if v == 0 {
		return time.Time{}, false
	}
	y, m, d := julianDayToDate(epochJDN + int64(v) - 1)
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
}

// SecondTime is a seconds-since-midnight time-of-day value.
type SecondTime int32

// EncodeSecondTime converts t (its time-of-day part) to its wire SecondTime value.
func EncodeSecondTime(t time.Time) SecondTime {
	return SecondTime(secondsOfDay(t) + 1)
}

// Time decodes a SecondTime onto an arbitrary reference date (year 1, day 1);
// ok is false for the NULL encoding (0). An empty-string source round-trips
// as midnight by convention of the caller passing the zero time.Time.
func (v SecondTime) Time() (t time.Time, ok bool) {
	if v == 0 {
		return time.Time{}, false
	}
	secs := int64(v) - 1
	return time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(secs) * time.Second), true
}
