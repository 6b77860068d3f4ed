package geodata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAreas = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "geometry": {"type": "Polygon", "coordinates": [[[30,50],[31,50],[31,51],[30,51],[30,50]]]}, "properties": {"name": "Kyiv", "higherDivision": "Київське воєводство"}},
    {"type": "Feature", "geometry": {"type": "Point", "coordinates": [30.5, 50.4]}, "properties": null}
  ]
}`

func TestParse_FeatureCollection(t *testing.T) {
	fc, err := Parse([]byte(sampleAreas))
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Kyiv", fc.Features[0].Properties["name"])
	assert.NotNil(t, fc.Features[1].Properties, "null properties should become an empty bag")
}

func TestParse_RejectsOtherTypes(t *testing.T) {
	_, err := Parse([]byte(`{"type":"Feature","geometry":null,"properties":{}}`))
	require.ErrorIs(t, err, ErrNotFeatureCollection)

	_, err = Parse([]byte(`not json`))
	require.Error(t, err)
}

func TestDecodeEncode_PreservesOrder(t *testing.T) {
	fc, err := Decode(strings.NewReader(sampleAreas))
	require.NoError(t, err)

	out, err := Encode(fc)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "\n"))
	assert.Contains(t, string(out), "\n  \"")

	again, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, again.Features, 2)
	assert.Equal(t, "Kyiv", again.Features[0].Properties["name"])
}
