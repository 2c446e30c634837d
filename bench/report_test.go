package bench

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_String_PadsNamesToSixteenColumns(t *testing.T) {
	r := Report{Lines: []ReportLine{
		{Profile: ProfileNoRender, LastKnownGood: 6062, LastTested: 9038},
		{Profile: ProfileCollisionRender, LastKnownGood: 0, LastTested: 1},
	}}

	assert.Equal(t, "NoRender        6062 9038\nCollisionRender 0 1\n", r.String())
	assert.Equal(t, "", Report{}.String())
}

func TestParseReport_ReadsWrittenText(t *testing.T) {
	text := "NoRender        6062 9038\n\nGravity         1000 4500\n"

	r, err := ParseReport(text)

	require.NoError(t, err)
	require.Len(t, r.Lines, 2)
	line, ok := r.Line(ProfileGravity)
	require.True(t, ok)
	assert.Equal(t, 1000, line.LastKnownGood)
	assert.Equal(t, 4500, line.LastTested)
	_, ok = r.Line(ProfileRender)
	assert.False(t, ok)
}

func TestParseReport_MalformedLines(t *testing.T) {
	for _, text := range []string{"NoRender 1\n", "NoRender x 2\n", "NoRender 1 y\n"} {
		_, err := ParseReport(text)
		assert.Error(t, err, "text %q", text)
	}
}

func TestWriteReportFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance.test")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer\n"), 0o644))

	r := Report{Lines: []ReportLine{{Profile: ProfileRender, LastKnownGood: 5, LastTested: 6}}}
	require.NoError(t, WriteReportFile(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Render          5 6\n", string(data))
}
