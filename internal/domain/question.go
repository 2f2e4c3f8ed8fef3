package domain

// QuestionType identifies the shape of a practice question.
type QuestionType string

// Supported question types.
const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionFreeRecall     QuestionType = "free_recall"
)

// QuestionTypes lists every question type in the order sets are presented.
var QuestionTypes = []QuestionType{
	QuestionMultipleChoice,
	QuestionTrueFalse,
	QuestionFillBlank,
	QuestionShortAnswer,
	QuestionFreeRecall,
}

// IsFreeResponse reports whether answers are judged against a sample answer
// rather than an answer key.
func (t QuestionType) IsFreeResponse() bool {
	return t == QuestionShortAnswer || t == QuestionFreeRecall
}

// Question is one generated practice question.
//
// Multiple choice questions carry Options keyed "a".."d" and the key of the
// right option in CorrectAnswer. True/false and fill-in-the-blank questions
// carry the answer itself in CorrectAnswer. Free-response questions carry a
// reference answer in SampleAnswer.
type Question struct {
	ID            int               `json:"id,omitempty"`
	Type          QuestionType      `json:"type" validate:"required,oneof=multiple_choice true_false fill_blank short_answer free_recall"`
	Text          string            `json:"text" validate:"required"`
	Options       map[string]string `json:"options,omitempty"`
	CorrectAnswer string            `json:"correct_answer,omitempty"`
	SampleAnswer  string            `json:"sample_answer,omitempty"`
	Difficulty    Difficulty        `json:"difficulty,omitempty"`
}

// Kind returns the question type.
func (q *Question) Kind() string { return string(q.Type) }

// Label returns the question text.
func (q *Question) Label() string { return q.Text }

// SetID assigns the session-local sequence number.
func (q *Question) SetID(id int) { q.ID = id }
