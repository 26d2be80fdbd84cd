package parser

import (
	"fmt"
	"regexp"
	"strings"
)

const fence = "```"

// FenceKind records which rule produced the extracted code
type FenceKind int

const (
	FenceNone    FenceKind = iota // no fence, whole response used
	FenceAny                      // first fenced block of any language
	FenceLabeled                  // first block labeled for the target language
)

func (k FenceKind) String() string {
	switch k {
	case FenceLabeled:
		return "labeled"
	case FenceAny:
		return "any"
	default:
		return "none"
	}
}

// ParsedResponse is the scene source pulled out of an LLM response
type ParsedResponse struct {
	Code  string
	Fence FenceKind
}

// Parser extracts source code from LLM responses
type Parser struct {
	language string
}

// New creates a new response parser for the given fence language label
func New(language string) *Parser {
	return &Parser{language: language}
}

// infoString matches a bare language label on the opening fence line
var infoString = regexp.MustCompile(`^[A-Za-z0-9_+.-]+\r?\n`)

// Parse extracts code from the response. It never fails: with no fence the
// trimmed response is returned as-is. Only the first matching block is used.
func (p *Parser) Parse(response string) ParsedResponse {
	if p.language != "" {
		if _, rest, ok := strings.Cut(response, fence+p.language); ok {
			return ParsedResponse{Code: blockBody(rest), Fence: FenceLabeled}
		}
	}

	if _, rest, ok := strings.Cut(response, fence); ok {
		// Drop a label like "py" or "python3" left on the fence line
		rest = infoString.ReplaceAllString(rest, "")
		return ParsedResponse{Code: blockBody(rest), Fence: FenceAny}
	}

	return ParsedResponse{Code: strings.TrimSpace(response), Fence: FenceNone}
}

// blockBody returns text up to the closing fence (or the end, if unclosed)
func blockBody(s string) string {
	body, _, _ := strings.Cut(s, fence)
	return strings.TrimSpace(body)
}

// Extract strips python code fences from a response
func Extract(response string) string {
	return New("python").Parse(response).Code
}

// ValidateScene checks that code defines the named scene class.
// This is advisory: the renderer is the real judge.
func ValidateScene(code, sceneName string) error {
	if strings.TrimSpace(code) == "" {
		return fmt.Errorf("empty scene source")
	}

	classDef := regexp.MustCompile(`(?m)^class\s+` + regexp.QuoteMeta(sceneName) + `\s*\(`)
	if !classDef.MatchString(code) {
		return fmt.Errorf("scene class %q not defined", sceneName)
	}

	if len(code) > 100_000 {
		return fmt.Errorf("scene source suspiciously long (%d chars)", len(code))
	}

	return nil
}
