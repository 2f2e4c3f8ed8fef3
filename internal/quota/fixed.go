package quota

import "github.com/phrazzld/tutorgen/internal/domain"

// BucketChoice groups multiple choice and true/false questions.
const BucketChoice = "multiple_choice_or_true_false"

// Questions is the quota for one question set: eight questions.
var Questions = MustNew(
	Bucket{
		Name:     BucketChoice,
		Required: 3,
		Kinds:    []string{string(domain.QuestionMultipleChoice), string(domain.QuestionTrueFalse)},
	},
	Bucket{Name: string(domain.QuestionFillBlank), Required: 2},
	Bucket{Name: string(domain.QuestionShortAnswer), Required: 2},
	Bucket{Name: string(domain.QuestionFreeRecall), Required: 1},
)

// Challenges is the quota for one challenge set.
var Challenges = MustNew(
	Bucket{Name: "challenge", Required: 5, Kinds: []string{domain.ChallengeType}},
)

// Report is the quota for a performance report: one of each required
// section plus optional notes.
var Report = MustNew(
	Bucket{Name: domain.SectionExecutiveSummary, Required: 1},
	Bucket{Name: domain.SectionFindings, Required: 1},
	Bucket{Name: domain.SectionProgression, Required: 1},
	Bucket{Name: domain.SectionRecommendations, Required: 1},
	Bucket{Name: domain.SectionPriorityFocus, Required: 1},
	Bucket{Name: domain.SectionNotes, Required: 1, Optional: true},
)
