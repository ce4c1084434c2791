// Package scripts embeds the default Risor summarizer script so the CLI
// works without any files on disk.
package scripts

import "embed"

//go:embed summarize.risor
var FS embed.FS

// Summarize is the path of the default summarizer script within FS.
const Summarize = "summarize.risor"
