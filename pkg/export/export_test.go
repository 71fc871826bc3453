package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"title", "date"},
		Rows:    [][]string{{"Talk, with comma", "2024-01-01"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "title,date\n\"Talk, with comma\",2024-01-01\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewCSVExporter().Render(Dataset{Headers: []string{"a", "b"}, Rows: [][]string{{"only one"}}})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(Agenda{
		Title:   "Agenda",
		Columns: []Column{{Header: "Time", Width: 30}, {Header: "Title"}},
		Sections: []Section{
			{Heading: "Monday", Rows: [][]string{{"09:00-10:00", "Café meeting"}}},
			{Heading: "Tuesday"},
		},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Agenda{})
	assert.Error(t, err)
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths([]Column{{Width: 30}, {}, {Width: 60}, {}})
	assert.Equal(t, []float64{30, 50, 60, 50}, widths)
}

func TestICSRenderAndParse(t *testing.T) {
	exporter := NewICSExporter("")
	exporter.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	reminder := 30
	start := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)

	out, err := exporter.Render("Dept", []ICSEvent{{
		UID:          "evt-1",
		Summary:      "Seminar",
		Description:  "Line one\nLine two",
		Location:     "Hall",
		Categories:   []string{"Lecture"},
		Start:        start,
		End:          start.Add(time.Hour),
		RRule:        "FREQ=WEEKLY;COUNT=2",
		AlarmMinutes: &reminder,
		Extra:        map[string]string{"X-DEPT-ROOM": "R1"},
	}})
	require.NoError(t, err)
	body := string(out)
	assert.Contains(t, body, "UID:evt-1")
	assert.Contains(t, body, "RRULE:FREQ=WEEKLY;COUNT=2")
	assert.Contains(t, body, "TRIGGER:-PT30M")

	events, skipped, err := exporter.Parse(strings.NewReader(body), "X-DEPT-ROOM")
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, events, 1)
	ev := events[0]
	assert.Equal(t, "evt-1", ev.UID)
	assert.Equal(t, "Line one\nLine two", ev.Description)
	assert.True(t, ev.Start.Equal(start))
	assert.True(t, ev.End.Equal(start.Add(time.Hour)))
	assert.Equal(t, []string{"Lecture"}, ev.Categories)
	assert.Equal(t, "R1", ev.Extra["X-DEPT-ROOM"])
	require.NotNil(t, ev.AlarmMinutes)
	assert.Equal(t, 30, *ev.AlarmMinutes)

	_, err = exporter.Render("", []ICSEvent{{Summary: "no uid"}})
	assert.Error(t, err)
}

func TestParseTriggerMinutes(t *testing.T) {
	cases := map[string]int{"-PT15M": 15, "-PT1H30M": 90, "-P1D": 1440, "-P1DT2H": 1560, "-P1W": 10080, "-PT90S": 1}
	for raw, want := range cases {
		got, err := ParseTriggerMinutes(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"PT15M", "-PT15", "-P1H", "20240101T000000Z"} {
		_, err := ParseTriggerMinutes(raw)
		assert.Error(t, err, raw)
	}
}
