// SPDX-License-Identifier: Apache-2.0

package intake

import (
	"context"
	"fmt"
)

// Source is a case file handed to the pipeline.
type Source struct {
	Content []byte
	// Format is an optional hint such as "yaml" or "markdown", usually the
	// file extension.
	Format string
	ID     string
}

// Parser turns one kind of case file into a Draft.
type Parser interface {
	CanHandle(source Source) bool
	Parse(ctx context.Context, source Source) (Draft, error)
	Name() string
}

type Pipeline struct {
	parsers []Parser
}

// NewPipeline registers parsers in priority order.
func NewPipeline(parsers ...Parser) *Pipeline {
	return &Pipeline{parsers: parsers}
}

type RunResult struct {
	Draft      Draft
	ParserUsed string
}

func (p *Pipeline) Run(ctx context.Context, source Source) (RunResult, error) {
	parser, err := p.selectParser(source)
	if err != nil {
		return RunResult{}, err
	}

	draft, err := parser.Parse(ctx, source)
	if err != nil {
		return RunResult{}, fmt.Errorf("parser %q failed: %w", parser.Name(), err)
	}
	return RunResult{Draft: draft, ParserUsed: parser.Name()}, nil
}

// selectParser returns the first registered parser that can handle the source.
func (p *Pipeline) selectParser(source Source) (Parser, error) {
	for _, parser := range p.parsers {
		if parser.CanHandle(source) {
			return parser, nil
		}
	}
	return nil, fmt.Errorf("unsupported case file format: no parser found for source %q (format hint: %q)", source.ID, source.Format)
}

func (p *Pipeline) RegisteredParsers() []string {
	names := make([]string, len(p.parsers))
	for i, parser := range p.parsers {
		names[i] = parser.Name()
	}
	return names
}
