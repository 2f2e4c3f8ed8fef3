package parse

import (
	"regexp"

	"github.com/phrazzld/tutorgen/internal/domain"
)

// minReportSections is the number of required sections a response must carry
// before it is accepted as a report at all.
const minReportSections = 2

var (
	reportSectionNames = append(append([]string{}, domain.RequiredReportSections...), domain.SectionNotes)
	reportTagPattern   = regexp.MustCompile(`(?i)</?repo[rpt]+>`)
)

// ReportSections parses a performance report:
//
//	<report>
//	  <executive_summary>...</executive_summary>
//	  <findings>...</findings>
//	  ...
//	  <notes>...</notes>
//	</report>
//
// It returns nil when no report tag (or misspelling of one) is present, or
// when fewer than two required sections could be recovered. Sections come
// back in canonical order.
func (p *Parser) ReportSections(text string) []*domain.ReportSection {
	if !p.hasReportTag(text) {
		p.logger.Debug("report tag not found", "snippet", snippet(text, 120))
		return nil
	}

	var (
		out      []*domain.ReportSection
		required int
	)
	for _, name := range reportSectionNames {
		content, ok := p.field(text, name, append([]string{"report"}, reportSectionNames...))
		if !ok {
			continue
		}
		out = append(out, &domain.ReportSection{Name: name, Content: content})
		if name != domain.SectionNotes {
			required++
		}
	}

	if required < minReportSections {
		p.logger.Warn("insufficient report sections parsed",
			"required_found", required,
			"snippet", snippet(text, 120))
		return nil
	}
	return out
}

func (p *Parser) hasReportTag(text string) bool {
	if p.ex.Find(text, "report").Tag != "" {
		return true
	}
	return reportTagPattern.MatchString(text)
}
