package domain

// AnswerEvaluation is the verdict on a student's answer to one question.
type AnswerEvaluation struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback" validate:"required"`
}

// ChallengeFeedback is the review of a challenge submission.
type ChallengeFeedback struct {
	Delivered           string `json:"delivered" validate:"required"`
	Strengths           string `json:"strengths" validate:"required"`
	AreasForImprovement string `json:"areas_for_improvement" validate:"required"`
	Suggestions         string `json:"suggestions" validate:"required"`
	OverallAssessment   string `json:"overall_assessment" validate:"required"`
	ReadyToSubmit       bool   `json:"ready_to_submit"`
}

// ChallengeSubmission is a student's response to a challenge, queued for
// feedback.
type ChallengeSubmission struct {
	Challenge Challenge `json:"challenge" validate:"required"`
	Response  string    `json:"response" validate:"required"`
	// Images are raw image bytes attached to the response. JSON carries them
	// base64 encoded.
	Images [][]byte `json:"images,omitempty"`
}

// Evaluation is a scored review of free-form work.
type Evaluation struct {
	Score           int    `json:"score" validate:"min=0,max=100"`
	Strengths       string `json:"strengths" validate:"required"`
	Weaknesses      string `json:"weaknesses,omitempty"`
	Recommendations string `json:"recommendations,omitempty"`
}
