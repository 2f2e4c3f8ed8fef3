package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phrazzld/tutorgen/internal/domain"
	"github.com/phrazzld/tutorgen/internal/service"
)

func questionsCmd(e *env) *cobra.Command {
	var (
		contentID  string
		file       string
		difficulty string
	)

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Generate a question set for one content",
		Long: `Generate a question set (3 multiple choice or true/false, 2 fill in the
blank, 2 short answer and 1 free text) for one content and store it in the
content's question registry.

The content is read from the contents directory by --content-id, or from
--file, in which case the file name without extension is the content id.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			content, err := loadContent(cmd, e, contentID, file)
			if err != nil {
				return err
			}
			tk, err := e.toolkit(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := service.NewQuestionService(tk, e.registries(), e.logger)
			if err != nil {
				return err
			}
			set, err := svc.Generate(cmd.Context(), service.QuestionRequest{
				Content:    content,
				Difficulty: domain.Difficulty(difficulty),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, set)
		},
	}

	cmd.Flags().StringVar(&contentID, "content-id", "", "content id in the contents directory")
	cmd.Flags().StringVar(&file, "file", "", "read the content from this file")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(domain.DifficultyEasy), "easy, medium or hard")
	cmd.MarkFlagsMutuallyExclusive("content-id", "file")
	cmd.MarkFlagsOneRequired("content-id", "file")
	return cmd
}

func challengesCmd(e *env) *cobra.Command {
	var contentIDs []string

	cmd := &cobra.Command{
		Use:   "challenges",
		Short: "Generate hands-on challenges for one or more contents",
		Long: `Generate 5 challenges. With several --content-id flags each content is
summarized first and the challenges are interdisciplinary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source := e.contents()
			contents := make([]domain.Content, 0, len(contentIDs))
			for _, id := range contentIDs {
				c, err := source.Content(cmd.Context(), id)
				if err != nil {
					return err
				}
				contents = append(contents, c)
			}

			tk, err := e.toolkit(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := service.NewChallengeService(tk, e.registries(), e.logger)
			if err != nil {
				return err
			}
			set, err := svc.Generate(cmd.Context(), service.ChallengeRequest{Contents: contents})
			if err != nil {
				return err
			}
			return printJSON(cmd, set)
		},
	}

	cmd.Flags().StringSliceVar(&contentIDs, "content-id", nil, "content ids (repeat or comma separate)")
	_ = cmd.MarkFlagRequired("content-id")
	return cmd
}

func reportCmd(e *env) *cobra.Command {
	var dataPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a student report",
		Long: `Generate a student report from student data. --data names a JSON or text
file; "-" reads standard input.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := readData(cmd, dataPath)
			if err != nil {
				return err
			}
			tk, err := e.toolkit(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := service.NewReportService(tk, e.logger)
			if err != nil {
				return err
			}
			result, err := svc.Generate(cmd.Context(), service.ReportRequest{StudentData: data})
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "student data file, or - for stdin")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

// loadContent reads the content by id or from a file.
func loadContent(cmd *cobra.Command, e *env, id, file string) (domain.Content, error) {
	if file == "" {
		return e.contents().Content(cmd.Context(), id)
	}
	text, err := os.ReadFile(file)
	if err != nil {
		return domain.Content{}, fmt.Errorf("failed to read content file: %w", err)
	}
	base := filepath.Base(file)
	return domain.Content{
		ID:   strings.TrimSuffix(base, filepath.Ext(base)),
		Text: string(text),
	}, nil
}

// readData returns decoded JSON when the input is JSON and the raw text
// otherwise.
func readData(cmd *cobra.Command, path string) (any, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read student data: %w", err)
	}

	var decoded any
	if json.Unmarshal(raw, &decoded) == nil {
		return decoded, nil
	}
	return string(raw), nil
}
