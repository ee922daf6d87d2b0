// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/clearrecordproj/clearrecord/internal/intake"
)

// YAMLParser reads YAML and JSON case files whose keys mirror the Draft
// fields. Unknown keys are rejected so typos do not silently drop answers.
type YAMLParser struct{}

func NewYAMLParser() *YAMLParser {
	return &YAMLParser{}
}

func (p *YAMLParser) Name() string {
	return "yaml"
}

func (p *YAMLParser) CanHandle(source intake.Source) bool {
	switch strings.ToLower(source.Format) {
	case "yaml", "yml", "json":
		return true
	}
	content := strings.TrimSpace(string(source.Content))
	if strings.HasPrefix(content, "{") {
		return true
	}
	// Plain YAML: key: value on the first line that is not a comment
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || line == "---" {
			continue
		}
		return strings.Contains(line, ":")
	}
	return false
}

func (p *YAMLParser) Parse(ctx context.Context, source intake.Source) (intake.Draft, error) {
	if err := ctx.Err(); err != nil {
		return intake.Draft{}, err
	}
	var d intake.Draft
	if err := yaml.UnmarshalWithOptions(source.Content, &d, yaml.Strict()); err != nil {
		return intake.Draft{}, fmt.Errorf("failed to unmarshal YAML/JSON case file: %w", err)
	}
	return d, nil
}
