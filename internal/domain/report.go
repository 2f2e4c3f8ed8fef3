package domain

// Report section names.
const (
	SectionExecutiveSummary = "executive_summary"
	SectionFindings         = "findings"
	SectionProgression      = "progression"
	SectionRecommendations  = "recommendations"
	SectionPriorityFocus    = "priority_focus"
	SectionNotes            = "notes"
)

// RequiredReportSections lists the sections every complete report carries,
// in presentation order.
var RequiredReportSections = []string{
	SectionExecutiveSummary,
	SectionFindings,
	SectionProgression,
	SectionRecommendations,
	SectionPriorityFocus,
}

// ReportSection is one named section of a performance report.
type ReportSection struct {
	ID      int    `json:"id,omitempty"`
	Name    string `json:"name" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// Kind returns the section name.
func (s *ReportSection) Kind() string { return s.Name }

// Label returns the section name.
func (s *ReportSection) Label() string { return s.Name }

// SetID assigns the session-local sequence number.
func (s *ReportSection) SetID(id int) { s.ID = id }

// Report is a performance report assembled from its sections.
type Report struct {
	ExecutiveSummary string `json:"executive_summary"`
	Findings         string `json:"findings"`
	Progression      string `json:"progression"`
	Recommendations  string `json:"recommendations"`
	PriorityFocus    string `json:"priority_focus"`
	Notes            string `json:"notes,omitempty"`
}

// NewReport assembles a report from sections. When a name repeats, the first
// section wins.
func NewReport(sections []*ReportSection) Report {
	var r Report
	for _, s := range sections {
		if s == nil {
			continue
		}
		if field := r.field(s.Name); field != nil && *field == "" {
			*field = s.Content
		}
	}
	return r
}

// Section returns the content stored under name.
func (r *Report) Section(name string) string {
	if field := r.field(name); field != nil {
		return *field
	}
	return ""
}

// Missing returns the required sections that have no content.
func (r *Report) Missing() []string {
	var missing []string
	for _, name := range RequiredReportSections {
		if r.Section(name) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}

// Complete reports whether every required section has content.
func (r *Report) Complete() bool {
	return len(r.Missing()) == 0
}

func (r *Report) field(name string) *string {
	switch name {
	case SectionExecutiveSummary:
		return &r.ExecutiveSummary
	case SectionFindings:
		return &r.Findings
	case SectionProgression:
		return &r.Progression
	case SectionRecommendations:
		return &r.Recommendations
	case SectionPriorityFocus:
		return &r.PriorityFocus
	case SectionNotes:
		return &r.Notes
	default:
		return nil
	}
}
