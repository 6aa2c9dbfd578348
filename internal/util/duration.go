package util

import (
	"strings"
	"time"

	"github.com/hako/durafmt"
)

var shortUnits = mustUnits("y:y,w:w,d:d,h:h,m:m,s:s,ms:ms,us:us")

func mustUnits(spec string) durafmt.Units {
	units, err := durafmt.DefaultUnitsCoder.Decode(spec)
	if err != nil {
		panic(err)
	}
	return units
}

// DurationToString renders a duration as "1 day 2 hours 3 minutes 4 seconds".
// Zero components are omitted, sub-second precision is dropped and values
// below one second (including negative ones) render as "0 seconds".
func DurationToString(d time.Duration) string {
	if d < time.Second {
		return "0 seconds"
	}
	return durafmt.Parse(d.Truncate(time.Second)).String()
}

// DurationToShortString renders a duration as "1d 2h 3m 4s".
func DurationToShortString(d time.Duration) string {
	if d < time.Second {
		return "0s"
	}
	// durafmt separates every value from its unit: "1 d 2 h"
	fields := strings.Fields(durafmt.Parse(d.Truncate(time.Second)).Format(shortUnits))
	parts := make([]string, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		parts = append(parts, fields[i]+fields[i+1])
	}
	return strings.Join(parts, " ")
}
