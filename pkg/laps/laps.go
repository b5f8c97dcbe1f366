// Package laps reshapes per driver lap records into per lap snapshots.
package laps

import (
	"sort"
	"strconv"

	"github.com/samber/lo"
)

type LapRecord struct {
	Lap         int      `json:"lap"`
	LapTime     *float64 `json:"lapTime"`
	S1          *float64 `json:"s1"`
	S2          *float64 `json:"s2"`
	S3          *float64 `json:"s3"`
	PitTime     *float64 `json:"pitTime"`
	Interval    *float64 `json:"interval"`
	Compound    string   `json:"compound"`
	TyreLife    *float64 `json:"tyreLife"`
	TrackStatus string   `json:"trackStatus"`
	Position    *float64 `json:"position"`
	Deleted     bool     `json:"deleted"`
}

type Driver struct {
	Number    string `json:"number"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	TeamColor string `json:"teamColor"`
}

type DriverLaps struct {
	Driver
	Laps []LapRecord `json:"laps"`
}

type DriverLap struct {
	Driver
	LapRecord
}

type LapSnapshot struct {
	Lap     int         `json:"lap"`
	Drivers []DriverLap `json:"drivers"`
}

// Transpose turns per driver laps into one snapshot per lap. Every (driver, lap)
// pair of the input shows up exactly once. Snapshots are ordered by lap and the
// drivers of a lap by position, drivers without position last.
func Transpose(drivers []DriverLaps) []LapSnapshot {
	byLap := map[int][]DriverLap{}
	for _, d := range drivers {
		for _, rec := range d.Laps {
			byLap[rec.Lap] = append(byLap[rec.Lap], DriverLap{Driver: d.Driver, LapRecord: rec})
		}
	}

	lapNumbers := lo.Keys(byLap)
	sort.Ints(lapNumbers)

	return lo.Map(lapNumbers, func(lap int, _ int) LapSnapshot {
		entries := byLap[lap]
		sort.SliceStable(entries, func(i, j int) bool {
			return Less(entries[i].Position, entries[j].Position, entries[i].Number, entries[j].Number)
		})
		return LapSnapshot{Lap: lap, Drivers: entries}
	})
}

// Less orders by position with nil positions last, ties broken by driver number.
func Less(a, b *float64, numA, numB string) bool {
	switch {
	case a == nil && b == nil:
	case a == nil:
		return false
	case b == nil:
		return true
	case *a != *b:
		return *a < *b
	}
	return NumberLess(numA, numB)
}

// NumberLess compares car numbers numerically, falling back to text.
func NumberLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func ForDriver(drivers []DriverLaps, number string) (DriverLaps, bool) {
	return lo.Find(drivers, func(d DriverLaps) bool { return d.Number == number })
}

func ForLap(snapshots []LapSnapshot, lap int) (LapSnapshot, bool) {
	return lo.Find(snapshots, func(s LapSnapshot) bool { return s.Lap == lap })
}

// TotalLaps is the highest lap number present.
func TotalLaps(snapshots []LapSnapshot) int {
	return lo.Reduce(snapshots, func(acc int, s LapSnapshot, _ int) int {
		if s.Lap > acc {
			return s.Lap
		}
		return acc
	}, 0)
}

// Count returns the number of (driver, lap) pairs.
func Count(drivers []DriverLaps) int {
	return lo.SumBy(drivers, func(d DriverLaps) int { return len(d.Laps) })
}
