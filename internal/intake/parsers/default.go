// SPDX-License-Identifier: Apache-2.0

package parsers

import "github.com/clearrecordproj/clearrecord/internal/intake"

// Default returns the pipeline used by the CLI and the MCP tools. Markdown
// is tried first because its CanHandle only claims files with a known
// section heading.
func Default() *intake.Pipeline {
	return intake.NewPipeline(
		NewMarkdownParser(),
		NewYAMLParser(),
	)
}
