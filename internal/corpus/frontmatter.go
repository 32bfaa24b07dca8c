// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"fmt"
	"regexp"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/playbook-engine/pkg/types"
)

var (
	frontMatterRe = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n`)
	modelHintRe   = regexp.MustCompile(`model_hint:\s*"[^"]*"`)
	tagsLineRe    = regexp.MustCompile(`(?m)^tags:\s*\[.*?\]\s*\n`)
)

// SplitFrontMatter separates the YAML front-matter from the body.
// Returns the raw YAML (without delimiters), the remaining body, and
// whether front-matter was present.
func SplitFrontMatter(content string) (string, string, bool) {
	if !strings.HasPrefix(content, "---") {
		return "", content, false
	}
	m := frontMatterRe.FindStringSubmatchIndex(content)
	if m == nil {
		return "", content, false
	}
	return content[m[2]:m[3]], content[m[1]:], true
}

// ParseFrontMatter parses the document's YAML header. Returns nil with
// no error when the document carries none.
func ParseFrontMatter(content string) (*types.FrontMatter, error) {
	raw, _, ok := SplitFrontMatter(content)
	if !ok {
		return nil, nil
	}
	var fm types.FrontMatter
	if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
		return nil, fmt.Errorf("parsing front-matter: %w", err)
	}
	return &fm, nil
}

// SetModelHint rewrites the model_hint field in the front-matter,
// preserving the rest of the file byte for byte. The content is
// returned unchanged when it has no front-matter or no model_hint line.
func SetModelHint(content string, hint types.ModelHint) string {
	m := frontMatterRe.FindStringSubmatchIndex(content)
	if m == nil {
		return content
	}
	header := content[m[2]:m[3]]
	updated := modelHintRe.ReplaceAllString(header, fmt.Sprintf("model_hint: %q", string(hint)))
	return "---\n" + updated + "\n---\n" + content[m[1]:]
}

// StripTags removes the tags line from the front-matter. Used by the
// tag cleanup pass; tags come back later with per-command curation.
func StripTags(content string) string {
	return tagsLineRe.ReplaceAllString(content, "")
}

// resourceHintRe matches the body Resource Hint marker, which is
// authoritative over the front-matter model_hint.
var resourceHintRe = regexp.MustCompile(`\*\*Resource Hint:\*\*\s+(sonnet|opus|haiku)`)

// ExtractResourceHint returns the model named by the body
// **Resource Hint:** marker, or "" when absent.
func ExtractResourceHint(content string) types.ModelHint {
	m := resourceHintRe.FindStringSubmatch(content)
	if m == nil {
		return ""
	}
	return types.ModelHint(m[1])
}
