package reembed

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTrackerReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)
	tracker.Start()

	tracker.Add(5)
	assert.Empty(t, buf.String(), "below interval, nothing reported")

	tracker.Add(5)
	assert.Contains(t, buf.String(), "10/100")

	tracker.Add(90)
	assert.Contains(t, buf.String(), "100/100")
}

func TestProgressTrackerFinish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 7, 100)
	tracker.Start()

	tracker.Add(3)
	tracker.Finish()

	out := buf.String()
	assert.Contains(t, out, "7/7")
	assert.Contains(t, out, "100.0%")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestProgressTrackerCapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 5, 1)
	tracker.Start()

	tracker.Add(20)
	assert.Contains(t, buf.String(), "5/5")
}

func TestProgressTrackerBeforeStart(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Add(5)
	tracker.Finish()
	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}
