package skills

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// header is the YAML block at the top of a skill file.
type header struct {
	Triggers []string `yaml:"triggers"`
}

// splitFrontmatter separates a leading "---" delimited block from the body.
// Content without a block is returned unchanged as the body.
func splitFrontmatter(content []byte) (frontmatter, body []byte, err error) {
	content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(content, []byte("---\n")) {
		return nil, content, nil
	}

	remaining := content[4:]
	if bytes.HasPrefix(remaining, []byte("---\n")) || bytes.Equal(remaining, []byte("---")) {
		return nil, bytes.TrimPrefix(remaining[3:], []byte("\n")), nil
	}

	closingIdx := bytes.Index(remaining, []byte("\n---\n"))
	if closingIdx == -1 {
		if !bytes.HasSuffix(remaining, []byte("\n---")) {
			return nil, nil, fmt.Errorf("unclosed front matter: missing closing '---'")
		}
		return remaining[:len(remaining)-4], nil, nil
	}

	frontmatter = remaining[:closingIdx]
	body = remaining[closingIdx+5:]
	return frontmatter, body, nil
}

func parseHeader(frontmatter []byte) (header, error) {
	var h header
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return h, nil
	}
	if err := yaml.Unmarshal(frontmatter, &h); err != nil {
		return h, fmt.Errorf("parse front matter: %w", err)
	}
	return h, nil
}
