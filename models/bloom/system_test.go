package bloom

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iscar-ucm/xdevs-go/devs"
)

func feedErrorKind(t *testing.T, err error) devs.Kind {
	t.Helper()
	var de *devs.Error
	require.ErrorAs(t, err, &de)
	return de.Kind
}

const csvHeader = "timestamp,lat,lon,alg,bth,nox,dox,sun,temperature,u,v,wind_x,wind_y\n"

func writeFixtureCSV(t *testing.T, dir string, rows []string) string {
	t.Helper()
	path := filepath.Join(dir, "input.csv")
	content := csvHeader
	for _, r := range rows {
		content += r + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestSystemStopsBeforeFeedExhaustion stops at t=60, the instant the
// feed emits its second (last) row and reads past the end of the file,
// before the model's reading from that row reaches the exhausted feed.
func TestSystemStopsBeforeFeedExhaustion(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeFixtureCSV(t, dir, []string{
		"0,0,0,0,0,2,25,3,0,1,1,0,0",
		"1,0,0,0,0,2,25,3,0,1,1,0,0",
	})
	outputPath := filepath.Join(dir, "output.csv")

	sys, err := NewSystem("test-site", 10.0, -20.0, 0.0, inputPath, outputPath)
	require.NoError(t, err)

	_, err = devs.Simulate(sys, 0, 60, nil)
	require.NoError(t, err)
	require.NoError(t, Close(sys.Feed))

	out, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(out), "id,source,timestamp,lat,lon,breath,photo,size,is_bloom")
	assert.Contains(t, string(out), "BLOOM,test-site")
}

// TestSystemPanicsWhenFeedRunsDry mirrors the original model's
// deliberate terminal condition: once the driving-variable feed has no
// more rows and the bloom model emits one more reading anyway, the feed
// raises a fatal error rather than looping forever on stale data.
func TestSystemPanicsWhenFeedRunsDry(t *testing.T) {
	dir := t.TempDir()
	inputPath := writeFixtureCSV(t, dir, []string{
		"0,0,0,0,0,2,25,3,0,1,1,0,0",
		"1,0,0,0,0,2,25,3,0,1,1,0,0",
	})
	outputPath := filepath.Join(dir, "output.csv")

	sys, err := NewSystem("test-site", 10.0, -20.0, 0.0, inputPath, outputPath)
	require.NoError(t, err)

	_, err = devs.Simulate(sys, 0, 65, nil)
	require.Error(t, err)
	assert.Equal(t, devs.UserPanic, feedErrorKind(t, err))
	require.NoError(t, Close(sys.Feed))
}

func TestNewSystemMissingInputFileErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := NewSystem("test-site", 0, 0, 0, filepath.Join(dir, "missing.csv"), filepath.Join(dir, "out.csv"))
	require.Error(t, err)
}
