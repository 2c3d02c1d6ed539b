package mdreport

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatter mirrors the YAML block the upstream search stage writes at the
// top of every report file. Unknown keys are tolerated; the generator has
// grown fields across versions.
type frontmatter struct {
	URL           flexString `yaml:"url"`
	Title         flexString `yaml:"title"`
	QualityScore  flexFloat  `yaml:"quality_score"`
	Company       flexString `yaml:"company"`
	StockCode     flexString `yaml:"stock_code"`
	MDDate        flexString `yaml:"md_date"`
	ExtractedDate flexString `yaml:"extracted_date"`
	SearchQuery   flexString `yaml:"search_query"`
}

// flexString decodes any YAML scalar as its literal text. The generator
// writes values unquoted, so a stock code like 2330 arrives tagged !!int and
// a plain string field would fail to decode.
type flexString string

func (s *flexString) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar, got %v node", value.Kind)
	}
	*s = flexString(strings.TrimSpace(value.Value))
	return nil
}

func (s flexString) String() string {
	return string(s)
}

// flexFloat decodes a YAML scalar as a float whether it arrives tagged
// !!float, !!int or quoted.
type flexFloat float64

func (f *flexFloat) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar, got %v node", value.Kind)
	}
	raw := strings.TrimSpace(value.Value)
	if raw == "" {
		*f = 0
		return nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("parse %q as number: %w", raw, err)
	}
	*f = flexFloat(parsed)
	return nil
}

// splitFrontmatter separates the leading YAML block from the article body.
// Line endings are normalized and a UTF-8 BOM is tolerated. Returns ok=false
// when the file does not start with a frontmatter fence.
func splitFrontmatter(raw []byte) (meta []byte, body string, ok bool) {
	text := strings.TrimPrefix(string(raw), "\uFEFF")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if !strings.HasPrefix(text, "---\n") {
		return nil, text, false
	}

	rest := text[len("---\n"):]
	if idx := strings.Index(rest, "\n---\n"); idx >= 0 {
		return []byte(rest[:idx+1]), rest[idx+len("\n---\n"):], true
	}
	// Closing fence at end of file without a trailing newline.
	if strings.HasSuffix(rest, "\n---") {
		return []byte(rest[:len(rest)-len("---")]), "", true
	}
	return nil, text, false
}

// decodeFrontmatter parses the YAML block. Unknown keys pass through
// untouched; this is upstream-generated data, not hand-maintained config.
func decodeFrontmatter(meta []byte) (*frontmatter, error) {
	var fm frontmatter
	if err := yaml.Unmarshal(meta, &fm); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	return &fm, nil
}
