package docs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docFixture = `SHIPS predictor file documentation
updated for the 2020 season

VMAX: Maximum surface wind (kt)
CSST: Climatological SST (deg C * 10)
SHRD: 850-200 hPa shear magnitude (kt * 10) vs time
LAT : Storm latitude (deg N * 10)

notes without any code follow here
CSST: Climatological sea surface temperature (deg C * 10)
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(docFixture))
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())

	desc, ok := c.Describe("VMAX")
	require.True(t, ok)
	assert.Equal(t, "Maximum surface wind (kt)", desc)

	// Codes are trimmed of surrounding whitespace.
	desc, ok = c.Describe("LAT")
	require.True(t, ok)
	assert.Equal(t, "Storm latitude (deg N * 10)", desc)

	_, ok = c.Describe("TIME")
	assert.False(t, ok)
}

func TestParse_LastEntryWins(t *testing.T) {
	c, err := Parse(strings.NewReader(docFixture))
	require.NoError(t, err)
	desc, ok := c.Describe("CSST")
	require.True(t, ok)
	assert.Equal(t, "Climatological sea surface temperature (deg C * 10)", desc)
}

func TestParse_SplitsOnFirstColonOnly(t *testing.T) {
	c, err := Parse(strings.NewReader("PSLV: pressure of steering level: center average\n"))
	require.NoError(t, err)
	desc, ok := c.Describe("PSLV")
	require.True(t, ok)
	assert.Equal(t, "pressure of steering level: center average", desc)
}

func TestCodes_Sorted(t *testing.T) {
	c, err := Parse(strings.NewReader(docFixture))
	require.NoError(t, err)
	assert.Equal(t, []string{"CSST", "LAT", "SHRD", "VMAX"}, c.Codes())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ships_predictor_file_2020.txt")
	require.NoError(t, os.WriteFile(path, []byte(docFixture), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	require.Error(t, err)
}
