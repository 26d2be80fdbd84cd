package cli

import (
	"fmt"
	"io"
	"os"

	tiktoken "github.com/pkoukk/tiktoken-go"
)

// countTokens estimates token count using tiktoken, falling back to character count
func countTokens(w io.Writer, text string) int {
	// Exact for OpenAI, a fair estimate for the other providers
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err == nil {
		count := len(tke.Encode(text, nil, nil))
		fmt.Fprintf(w, "Prompt tokens: ~%d (tiktoken estimate)\n", count)
		return count
	}

	// Fallback: character count
	count := len(text) / 4
	fmt.Fprintf(w, "Prompt tokens: ~%d (character estimate)\n", count)
	return count
}

// truncate truncates a string to maxLen characters with ellipsis
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// checkWritable creates dir if needed and verifies a file can be written there
func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".manimator-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
