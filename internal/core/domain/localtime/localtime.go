// Package localtime converts naive wall-clock timestamps into absolute
// instants using IANA zone rules.
package localtime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const DefaultZone = "America/New_York"

var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidZone      = errors.New("invalid zone")
)

var layouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

type ZoneProvider interface {
	Location(name string) (*time.Location, error)
}

// SystemZoneProvider resolves zones from the tz database compiled into the
// binary or installed on the host.
type SystemZoneProvider struct{}

func (SystemZoneProvider) Location(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidZone, name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidZone, name, err)
	}
	return loc, nil
}

type Normalizer struct {
	zones ZoneProvider
}

func NewNormalizer(zones ZoneProvider) *Normalizer {
	if zones == nil {
		zones = SystemZoneProvider{}
	}
	return &Normalizer{zones: zones}
}

// Normalize interprets value as a wall-clock time in zone and returns the
// corresponding UTC instant.
//
// A wall time that occurs twice resolves to the earlier instant. A wall time
// skipped by a forward transition is read with the offset in force before
// the transition.
func (n *Normalizer) Normalize(value string, zone string) (time.Time, error) {
	loc, err := n.zones.Location(zone)
	if err != nil {
		return time.Time{}, err
	}
	wall, err := ParseNaive(value)
	if err != nil {
		return time.Time{}, err
	}
	return resolve(wall, loc), nil
}

// Localize returns instant as seen on a wall clock in zone.
func (n *Normalizer) Localize(instant time.Time, zone string) (time.Time, error) {
	loc, err := n.zones.Location(zone)
	if err != nil {
		return time.Time{}, err
	}
	return instant.In(loc), nil
}

// ValidateZone reports ErrInvalidZone when zone is unknown.
func (n *Normalizer) ValidateZone(zone string) error {
	_, err := n.zones.Location(zone)
	return err
}

// ParseNaive parses value into its wall-clock fields, returned in UTC.
// Values carrying an offset or a Z suffix are rejected.
func ParseNaive(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

// resolve maps a wall clock reading in loc to an instant. A reading repeated
// by a fall-back transition resolves to standard time. A reading skipped by a
// spring-forward gap keeps the offset in force before the gap.
func resolve(wall time.Time, loc *time.Location) time.Time {
	local := time.Date(
		wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(),
		loc,
	)
	_, before := local.Add(-12 * time.Hour).Zone()
	_, after := local.Add(12 * time.Hour).Zone()

	var (
		best  time.Time
		found bool
	)
	for _, offset := range []int{before, after} {
		candidate := wall.Add(-time.Duration(offset) * time.Second)
		if _, actual := candidate.In(loc).Zone(); actual != offset {
			continue
		}
		if !found || preferred(candidate, best, loc) {
			best, found = candidate, true
		}
	}
	if !found {
		return wall.Add(-time.Duration(before) * time.Second)
	}
	return best
}

func preferred(candidate, current time.Time, loc *time.Location) bool {
	candidateDST, currentDST := candidate.In(loc).IsDST(), current.In(loc).IsDST()
	if candidateDST != currentDST {
		return !candidateDST
	}
	return candidate.Before(current)
}
