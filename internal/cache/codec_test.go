package cache

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhima/edge-cache/internal/models"
)

func TestCodecDecode_WhenRowValid_ThenReturnsValue(t *testing.T) {
	codec := MustCodec[models.AppConfig](models.AppConfigSchema)
	raw, err := json.Marshal(appConfig("cfg-1", "Alpha"))
	require.NoError(t, err)

	d := codec.Decode(0, raw)

	require.True(t, d.OK())
	assert.Equal(t, "Alpha", d.Value.Name)
	assert.Equal(t, models.AppConfigModeOnline, d.Value.Mode)
}

func TestCodecDecode_WhenFieldMissingOrMistyped_ThenReturnsDecodeError(t *testing.T) {
	codec := MustCodec[models.AppConfig](models.AppConfigSchema)

	d := codec.Decode(3, json.RawMessage(`{"_id":"bad","name":42}`))

	require.False(t, d.OK())
	assert.Equal(t, 3, d.Err.Index)
	assert.Equal(t, "bad", d.Err.ID)
	assert.NotEmpty(t, d.Err.Reasons)
	assert.True(t, errors.Is(d.Err, errSchemaMismatch))
}

func TestCodecDecode_WhenNotJSON_ThenReturnsDecodeError(t *testing.T) {
	codec := MustCodec[models.AppConfig](models.AppConfigSchema)

	d := codec.Decode(0, json.RawMessage(`not json`))

	require.False(t, d.OK())
	assert.Empty(t, d.Err.ID)
	assert.Contains(t, d.Err.Error(), "<unknown>")
}

func TestCodecDecodeAll_WhenMixedRows_ThenTagsEachIndependently(t *testing.T) {
	codec := MustCodec[models.AppConfig](models.AppConfigSchema)
	good, err := json.Marshal(appConfig("g", "Good"))
	require.NoError(t, err)

	out := codec.DecodeAll([]json.RawMessage{json.RawMessage(`{}`), good})

	require.Len(t, out, 2)
	assert.False(t, out[0].OK())
	assert.True(t, out[1].OK())
}

func TestNewCodec_WhenSchemaInvalid_ThenError(t *testing.T) {
	_, err := NewCodec[models.AppConfig](`{"type": 12}`)

	assert.Error(t, err)
	assert.Panics(t, func() { MustCodec[models.AppConfig](`{`) })
}

func TestCodecEncode_WhenRecord_ThenUsesJSONFieldNames(t *testing.T) {
	codec := MustCodec[models.AppConfig](models.AppConfigSchema)

	doc, err := codec.Encode(appConfig("cfg-1", "Alpha"))

	require.NoError(t, err)
	assert.Equal(t, "cfg-1", doc["_id"])
	assert.Equal(t, "Alpha", doc["name"])
	assert.Equal(t, false, doc["allowUntrustedCerts"])
}
