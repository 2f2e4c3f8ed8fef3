package domain

// Classification assigns a content to a subject category.
type Classification struct {
	Category    string `json:"category" validate:"required"`
	Subcategory string `json:"subcategory,omitempty"`
	Reasoning   string `json:"reasoning,omitempty"`
	// Confidence is nil when the model omitted it.
	Confidence *float64 `json:"confidence,omitempty"`
}
