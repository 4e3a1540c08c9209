package table

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadStandardTimes(t *testing.T) {
	jsonDoc := `[{"start_hour": "00", "times": [{"forecast_hour": 0, "upper_duration": "P0DT0H5M0S", "lower_duration": "P0DT0H3M0S"}]}]`
	yamlDoc := `- start_hour: "00"
  times:
    - forecast_hour: 0
      upper_duration: P0DT0H5M0S
      lower_duration: P0DT0H3M0S
`
	for name, doc := range map[string]string{"times.json": jsonDoc, "times.yaml": yamlDoc} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

			results, err := ReadStandardTimes(path)
			require.NoError(t, err)
			require.Len(t, results, 1)
			assert.Equal(t, "00", results[0].StartHour)
			require.Len(t, results[0].Times, 1)
			assert.Equal(t, 5*time.Minute, results[0].Times[0].Upper)
			assert.Equal(t, 3*time.Minute, results[0].Times[0].Lower)
		})
	}
}

func TestReadStandardTimesErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ReadStandardTimes(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"start_hour": "00", "extra": 1}]`), 0o600))
	_, err = ReadStandardTimes(bad)
	assert.Error(t, err)

	badDuration := filepath.Join(dir, "duration.yaml")
	require.NoError(t, os.WriteFile(badDuration, []byte("- start_hour: \"00\"\n  times:\n    - forecast_hour: 0\n      upper_duration: five minutes\n      lower_duration: P0DT0H3M0S\n"), 0o600))
	_, err = ReadStandardTimes(badDuration)
	assert.Error(t, err)
}
