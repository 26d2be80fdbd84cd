package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alecf/manimator/internal/animation"
	"github.com/alecf/manimator/internal/llm"
)

func TestFormatJSON_Rendered(t *testing.T) {
	cost := 0.0012
	result := &animation.Result{
		Key:       "abc",
		FileName:  "animation_abc.mp4",
		VideoPath: "/videos/animation_abc.mp4",
		Model: &llm.QueryResponse{
			Provider:     "gemini",
			Model:        "gemini-2.0-flash-exp",
			TokensInput:  120,
			TokensOutput: 340,
		},
	}

	out, err := FormatJSON(result, &cost)
	require.NoError(t, err)

	var decoded JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "/videos/animation_abc.mp4", decoded.VideoPath)
	assert.False(t, decoded.Cached)
	require.NotNil(t, decoded.Metadata)
	assert.Equal(t, "gemini", decoded.Metadata.Provider)
	assert.Equal(t, 340, decoded.Metadata.TokensOutput)
	require.NotNil(t, decoded.Metadata.Cost)
	assert.InDelta(t, 0.0012, *decoded.Metadata.Cost, 1e-9)
}

func TestFormatJSON_CachedHasNoMetadata(t *testing.T) {
	out, err := FormatJSON(&animation.Result{VideoPath: "/v/a.mp4", Cached: true}, nil)
	require.NoError(t, err)
	assert.NotContains(t, out, "metadata")
	assert.Contains(t, out, `"cached": true`)
}

func TestFormatPlain(t *testing.T) {
	assert.Equal(t, "/v/a.mp4", FormatPlain(&animation.Result{VideoPath: "/v/a.mp4"}))
	assert.Equal(t, "/v/a.mp4 (cached)", FormatPlain(&animation.Result{VideoPath: "/v/a.mp4", Cached: true}))
}
