package parse

import (
	"io"
	"log/slog"
	"strings"

	"github.com/phrazzld/tutorgen/internal/extract"
)

// Parser extracts domain records from model output.
// It is safe for concurrent use.
type Parser struct {
	ex     *extract.Extractor
	logger *slog.Logger
}

// New creates a Parser. A nil extractor uses the default extractor and a nil
// logger discards output.
func New(ex *extract.Extractor, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if ex == nil {
		ex = extract.New(logger)
	}
	return &Parser{
		ex:     ex,
		logger: logger.With("component", "parser"),
	}
}

// field extracts tag from block, treating the other names in fields as
// siblings that must not be mistaken for tag.
func (p *Parser) field(block, tag string, fields []string) (string, bool) {
	siblings := make([]string, 0, len(fields))
	for _, f := range fields {
		if f != tag {
			siblings = append(siblings, f)
		}
	}
	return p.ex.Extract(block, tag, siblings...)
}

// Summary returns the body of the <summary> block.
func (p *Parser) Summary(text string) (string, bool) {
	summary, ok := p.ex.Extract(text, "summary")
	if !ok {
		p.logger.Debug("summary not found")
		return "", false
	}
	return summary, true
}

// snippet shortens text for log output.
func snippet(text string, n int) string {
	text = strings.TrimSpace(text)
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
