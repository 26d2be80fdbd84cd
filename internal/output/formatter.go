package output

import (
	"encoding/json"
	"fmt"

	"github.com/alecf/manimator/internal/animation"
)

// JSONOutput represents the JSON output format
type JSONOutput struct {
	VideoPath string    `json:"video_path"`
	FileName  string    `json:"file_name"`
	Key       string    `json:"key"`
	Cached    bool      `json:"cached"`
	Metadata  *Metadata `json:"metadata,omitempty"`
}

// Metadata represents metadata about the model call
type Metadata struct {
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
	TokensInput  int      `json:"tokens_input"`
	TokensOutput int      `json:"tokens_output"`
	Cost         *float64 `json:"cost,omitempty"` // nil for Ollama
}

// FormatJSON formats a generation result as JSON.
// Metadata is omitted when no model call was made.
func FormatJSON(result *animation.Result, cost *float64) (string, error) {
	out := JSONOutput{
		VideoPath: result.VideoPath,
		FileName:  result.FileName,
		Key:       result.Key,
		Cached:    result.Cached,
	}
	if resp := result.Model; resp != nil {
		out.Metadata = &Metadata{
			Provider:     resp.Provider,
			Model:        resp.Model,
			TokensInput:  resp.TokensInput,
			TokensOutput: resp.TokensOutput,
			Cost:         cost,
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return string(data), nil
}

// FormatPlain formats a generation result as plain text
func FormatPlain(result *animation.Result) string {
	if result.Cached {
		return result.VideoPath + " (cached)"
	}
	return result.VideoPath
}
