package model

import "time"

// DefaultSectionName is the name given to new sections.
const DefaultSectionName = "Unnamed"

// Field identifies one of a section's counters.
type Field string

const (
	FieldStitches Field = "stitches"
	FieldRows     Field = "rows"
	FieldRepeats  Field = "repeats"
	FieldTime     Field = "time"
)

// CounterFields lists the user-incremented counters in display order.
var CounterFields = []Field{FieldStitches, FieldRows, FieldRepeats}

// Valid reports whether the field names a known counter.
func (field Field) Valid() bool {
	switch field {
	case FieldStitches, FieldRows, FieldRepeats, FieldTime:
		return true
	default:
		return false
	}
}

// Section holds the counters for one part of a project.
type Section struct {
	Stitches int   `json:"stitches"`
	Rows     int   `json:"rows"`
	Repeats  int   `json:"repeats"`
	TimeMs   int64 `json:"time"`
}

// Get returns the value of a counter.
func (section Section) Get(field Field) int64 {
	switch field {
	case FieldStitches:
		return int64(section.Stitches)
	case FieldRows:
		return int64(section.Rows)
	case FieldRepeats:
		return int64(section.Repeats)
	case FieldTime:
		return section.TimeMs
	default:
		return 0
	}
}

// With returns a copy of the section with one counter overwritten.
func (section Section) With(field Field, value int64) Section {
	switch field {
	case FieldStitches:
		section.Stitches = int(value)
	case FieldRows:
		section.Rows = int(value)
	case FieldRepeats:
		section.Repeats = int(value)
	case FieldTime:
		section.TimeMs = value
	}
	return section
}

// Elapsed returns the section time as a duration.
func (section Section) Elapsed() time.Duration {
	return time.Duration(section.TimeMs) * time.Millisecond
}

// Project is a tracked piece of work split into named sections.
type Project struct {
	ID              string             `json:"id"`
	Name            string             `json:"name"`
	SelectedSection string             `json:"selectedSection"`
	Sections        map[string]Section `json:"sections"`
}

// Clone returns a deep copy of the project.
func (project Project) Clone() Project {
	sections := make(map[string]Section, len(project.Sections))
	for name, section := range project.Sections {
		sections[name] = section
	}
	project.Sections = sections
	return project
}

// Current returns the selected section, if it exists.
func (project Project) Current() (Section, bool) {
	section, ok := project.Sections[project.SelectedSection]
	return section, ok
}

// Totals sums every section of the project.
func (project Project) Totals() Section {
	var totals Section
	for _, section := range project.Sections {
		totals.Stitches += section.Stitches
		totals.Rows += section.Rows
		totals.Repeats += section.Repeats
		totals.TimeMs += section.TimeMs
	}
	return totals
}
