package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/generation"
	"github.com/phrazzld/tutorgen/internal/platform/logger"
	"github.com/phrazzld/tutorgen/internal/prompts"
	"github.com/phrazzld/tutorgen/internal/quota"
)

const reportMaxTokens = 4096

// ReportRequest carries the student performance data to report on. A
// string is passed to the model verbatim; anything else is rendered as
// indented JSON.
type ReportRequest struct {
	StudentData any `json:"student_data" validate:"required"`
}

// ReportResult is the outcome of a report session.
type ReportResult struct {
	Report   domain.Report           `json:"report"`
	Sections []*domain.ReportSection `json:"sections"`
	State    generation.State        `json:"state"`
	Attempts int                     `json:"attempts"`
	Missing  []string                `json:"missing_sections,omitempty"`
}

// ReportService generates performance reports section by section, asking
// again for whatever sections are still missing.
type ReportService struct {
	tk     Toolkit
	logger *slog.Logger
}

// NewReportService creates a ReportService.
func NewReportService(tk Toolkit, logger *slog.Logger) (*ReportService, error) {
	if err := tk.check(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{tk: tk, logger: logger.With(slog.String("component", "report_service"))}, nil
}

// Generate runs a report session.
func (s *ReportService) Generate(ctx context.Context, req ReportRequest) (*ReportResult, error) {
	data, err := studentData(req.StudentData)
	if err != nil {
		return nil, err
	}
	prompt, err := s.tk.prompt(prompts.Report)
	if err != nil {
		return nil, err
	}

	outcome, err := generation.Run(ctx, s.tk.Controller, generation.Plan[*domain.ReportSection]{
		Name:      "report",
		Quota:     quota.Report,
		Prompt:    prompt,
		Variables: map[string]any{"student_data": data},
		MaxTokens: reportMaxTokens,
		Parse:     s.tk.Parser.ReportSections,
		Validate:  s.tk.Validator.ReportSection,
	})
	if err != nil {
		return nil, fmt.Errorf("report generation failed: %w", err)
	}

	report := domain.NewReport(outcome.Items)
	result := &ReportResult{
		Report:   report,
		Sections: outcome.Items,
		State:    outcome.State,
		Attempts: outcome.Attempts,
		Missing:  report.Missing(),
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("report generated",
		"state", outcome.State,
		"sections", len(outcome.Items),
		"missing", len(result.Missing))
	return result, nil
}

func studentData(v any) (string, error) {
	switch d := v.(type) {
	case nil:
		return "", fmt.Errorf("%w: student data is required", domain.ErrValidation)
	case string:
		if strings.TrimSpace(d) == "" {
			return "", fmt.Errorf("%w: student data is required", domain.ErrValidation)
		}
		return d, nil
	default:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return "", fmt.Errorf("%w: student data: %v", domain.ErrValidation, err)
		}
		return string(data), nil
	}
}
