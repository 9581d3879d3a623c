package geo

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// MinutesPerDay is the number of minutes in a day.
const MinutesPerDay = 24 * 60

// ErrInvalidClock indicates a malformed HH:mm time-of-day.
var ErrInvalidClock = errors.New("time must be in HH:mm format")

var clockRegex = regexp.MustCompile(`^([01]?\d|2[0-4]):([0-5]\d)$`)

// Clock is a local time of day expressed as minutes since midnight.
// 24:00 is allowed as an end-of-day closing time.
type Clock int

// At builds a Clock from hours and minutes.
func At(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ParseClock parses an HH:mm string.
func ParseClock(s string) (Clock, error) {
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, ErrInvalidClock
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	if h == 24 && mm != 0 {
		return 0, ErrInvalidClock
	}
	return At(h, mm), nil
}

// Add returns the clock shifted by the given number of minutes.
func (c Clock) Add(minutes int) Clock {
	return c + Clock(minutes)
}

// Sub returns the number of minutes between c and other.
func (c Clock) Sub(other Clock) int {
	return int(c - other)
}

// String formats the clock as HH:mm.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalJSON encodes the clock as an HH:mm string.
func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes an HH:mm string.
func (c *Clock) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
