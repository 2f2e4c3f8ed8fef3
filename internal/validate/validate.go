// Package validate applies structural rules to parsed records before they
// may count toward a quota. It never repairs a record: a record either
// passes or is discarded with a reason.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/tutorgen/internal/domain"
)

// Result is the outcome of validating one record.
type Result struct {
	Valid  bool
	Reason string
}

// OK is the passing result.
var OK = Result{Valid: true}

// Validator checks records against their category rules.
// It is safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(questionRules, domain.Question{})
	return &Validator{v: v}
}

// Question checks a question against the rules for its type.
func (v *Validator) Question(q *domain.Question) Result {
	if q == nil {
		return Result{Reason: "question is nil"}
	}
	return v.check(q)
}

// Challenge requires all four challenge fields.
func (v *Validator) Challenge(c *domain.Challenge) Result {
	if c == nil {
		return Result{Reason: "challenge is nil"}
	}
	return v.check(c)
}

// ReportSection requires a named section with content.
func (v *Validator) ReportSection(s *domain.ReportSection) Result {
	if s == nil {
		return Result{Reason: "report section is nil"}
	}
	return v.check(s)
}

// Struct validates any tagged struct and returns the raw validator error.
// API handlers use it for request bodies.
func (v *Validator) Struct(s any) error {
	return v.v.Struct(s)
}

func (v *Validator) check(record any) Result {
	err := v.v.Struct(record)
	if err == nil {
		return OK
	}
	return Result{Reason: Describe(err)}
}

// Describe renders a validation error as a single human-readable reason.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, describeField(fe))
	}
	return strings.Join(reasons, "; ")
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fmt.Sprint(fe.Value()))
	case "answer_key":
		return fmt.Sprintf("correct answer %q not found in available options [%s]", fmt.Sprint(fe.Value()), fe.Param())
	case "option_text":
		return fmt.Sprintf("option %q exists but has empty content", fmt.Sprint(fe.Value()))
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// questionRules enforces the per-type answer requirements.
func questionRules(sl validator.StructLevel) {
	q := sl.Current().Interface().(domain.Question)

	switch q.Type {
	case domain.QuestionMultipleChoice:
		keys := optionKeys(q.Options)
		if len(keys) == 0 {
			sl.ReportError(q.Options, "options", "Options", "required", "")
			return
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			sl.ReportError(q.CorrectAnswer, "correct_answer", "CorrectAnswer", "required", "")
			return
		}
		text, ok := q.Options[q.CorrectAnswer]
		if !ok {
			sl.ReportError(q.CorrectAnswer, "correct_answer", "CorrectAnswer", "answer_key", strings.Join(keys, ", "))
			return
		}
		if strings.TrimSpace(text) == "" {
			sl.ReportError(q.CorrectAnswer, "correct_answer", "CorrectAnswer", "option_text", "")
		}
	case domain.QuestionTrueFalse, domain.QuestionFillBlank:
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			sl.ReportError(q.CorrectAnswer, "correct_answer", "CorrectAnswer", "required", "")
		}
	case domain.QuestionShortAnswer, domain.QuestionFreeRecall:
		if strings.TrimSpace(q.SampleAnswer) == "" {
			sl.ReportError(q.SampleAnswer, "sample_answer", "SampleAnswer", "required", "")
		}
	}
}

// optionKeys returns the option keys in sorted order.
func optionKeys(options map[string]string) []string {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
