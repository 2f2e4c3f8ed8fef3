package domain

// ChallengeType is the stored type of every generated challenge.
const ChallengeType = "experimental_challenge"

// Challenge is an open-ended activity that asks a student to apply one or
// more contents.
type Challenge struct {
	ID            int    `json:"id,omitempty"`
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description" validate:"required"`
	LearningGoals string `json:"learning_goals" validate:"required"`
	Deliverables  string `json:"deliverables" validate:"required"`
}

// Kind returns ChallengeType.
func (c *Challenge) Kind() string { return ChallengeType }

// Label returns the challenge title.
func (c *Challenge) Label() string { return c.Title }

// SetID assigns the session-local sequence number.
func (c *Challenge) SetID(id int) { c.ID = id }
