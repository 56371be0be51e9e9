package calendar

import (
	"fmt"
	"time"

	"github.com/nuvl/nuvlworld/world"
)

// DayLabel is the time prefix shown for iv in the cell for date:
//
//	"HH:MM"    starts on date and ends the same day (or at the next midnight)
//	"< HH:MM"  starts on date and continues past it
//	"> HH:MM"  started earlier and ends on date, showing the end time
//	"<->"      started earlier and continues past date
func DayLabel(iv EventTimeInterval, date world.Date, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	begin := time.UnixMilli(iv.StartMillis).In(loc)
	beginTime := fmt.Sprintf("%02d:%02d", begin.Hour(), begin.Minute())
	if iv.EndMillis == iv.StartMillis {
		return beginTime
	}

	beginDate := world.DateOf(begin)
	end := time.UnixMilli(iv.EndMillis).In(loc)
	endDate := world.DateOf(end)

	switch {
	case date == beginDate:
		if endDate == beginDate || (isMidnight(end) && endDate == beginDate.AddDays(1)) {
			return beginTime
		}
		return "< " + beginTime
	case date == endDate:
		return fmt.Sprintf("> %02d:%02d", end.Hour(), end.Minute())
	default:
		return "<->"
	}
}
