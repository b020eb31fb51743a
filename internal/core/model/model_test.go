package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name  string
		value time.Duration
		want  string
	}{
		{"zero", 0, "00:00.00"},
		{"negative clamps", -time.Second, "00:00.00"},
		{"centiseconds", 1234 * time.Millisecond, "00:01.23"},
		{"minutes", 61*time.Second + 50*time.Millisecond, "01:01.05"},
		{"past an hour keeps counting minutes", 75 * time.Minute, "75:00.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.value))
		})
	}
}

func TestProjectTotals(t *testing.T) {
	project := Project{
		Sections: map[string]Section{
			"Sleeve": {Stitches: 10, Rows: 2, Repeats: 1, TimeMs: 1500},
			"Body":   {Stitches: 5, Rows: 3, TimeMs: 500},
		},
	}
	assert.Equal(t, Section{Stitches: 15, Rows: 5, Repeats: 1, TimeMs: 2000}, project.Totals())
}

func TestProjectCloneIsDeep(t *testing.T) {
	original := Project{Sections: map[string]Section{"A": {Rows: 1}}}
	clone := original.Clone()
	clone.Sections["A"] = Section{Rows: 9}
	clone.Sections["B"] = Section{}

	assert.Equal(t, 1, original.Sections["A"].Rows)
	assert.Len(t, original.Sections, 1)
}

func TestSectionWithAndGet(t *testing.T) {
	section := Section{}.With(FieldRows, 4).With(FieldTime, 2500)
	assert.Equal(t, int64(4), section.Get(FieldRows))
	assert.Equal(t, 2500*time.Millisecond, section.Elapsed())
	assert.Equal(t, int64(0), section.Get(Field("bogus")))
}

func TestSettingsNormalize(t *testing.T) {
	settings := Settings{OffThresholdMinutes: 0, OnIntervalMinutes: -3}.Normalize()
	assert.Equal(t, 5, settings.OffThresholdMinutes)
	assert.Equal(t, 5, settings.OnIntervalMinutes)
	assert.Equal(t, 5*time.Minute, Settings{}.OnInterval())
	assert.Equal(t, 2*time.Minute, Settings{OffThresholdMinutes: 2}.OffThreshold())
}
