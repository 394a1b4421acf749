package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Durations travel over the wire and live in the database as "hh:mm".
// Hours may exceed 24 (a turn can span more than a day); minutes are 0-59.
var (
	hhmmRe   = regexp.MustCompile(`^(\d+):([0-5]?\d)$`)
	hhmmssRe = regexp.MustCompile(`^(\d+):([0-5]\d):([0-5]\d)$`)
)

// Durata is a turn duration with hh:mm JSON and storage encoding.
type Durata struct {
	time.Duration
}

// ParseDurata parses "hh:mm" into a Durata.
func ParseDurata(s string) (Durata, error) {
	m := hhmmRe.FindStringSubmatch(s)
	if m == nil {
		return Durata{}, fmt.Errorf("invalid duration %q: expected hh:mm (e.g. 02:30 or 25:00)", s)
	}
	var hours, minutes int
	fmt.Sscanf(m[1], "%d", &hours)
	fmt.Sscanf(m[2], "%d", &minutes)
	return Durata{time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute}, nil
}

// ParseDurataHHMMSS parses "HH:MM:SS", the format used by the legacy database.
func ParseDurataHHMMSS(s string) (Durata, error) {
	m := hhmmssRe.FindStringSubmatch(s)
	if m == nil {
		return Durata{}, fmt.Errorf("invalid time format %q: expected HH:MM:SS", s)
	}
	var hours, minutes, seconds int
	fmt.Sscanf(m[1], "%d", &hours)
	fmt.Sscanf(m[2], "%d", &minutes)
	fmt.Sscanf(m[3], "%d", &seconds)
	return Durata{
		time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			time.Duration(seconds)*time.Second,
	}, nil
}

// String renders the duration as zero-padded "hh:mm". Seconds are truncated.
func (d Durata) String() string {
	total := int(d.Duration.Seconds())
	return fmt.Sprintf("%02d:%02d", total/3600, (total%3600)/60)
}

// MarshalJSON encodes as "hh:mm".
func (d Durata) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "hh:mm".
func (d *Durata) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDurata(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
