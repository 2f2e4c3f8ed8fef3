package generation

import "errors"

// Sentinels shared by generators and the controller. Provider adapters wrap
// them so callers can branch with errors.Is.
var (
	// ErrGenerationFailed: the model produced nothing usable after all attempts.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidResponse: the output could not be parsed or failed validation.
	ErrInvalidResponse = errors.New("malformed model output")

	// ErrContentBlocked: the provider refused the prompt or the answer.
	ErrContentBlocked = errors.New("blocked by provider safety filters")

	// ErrTransientFailure: rate limits, timeouts and 5xx responses. Retryable.
	ErrTransientFailure = errors.New("transient provider error")

	ErrInvalidConfig = errors.New("invalid generator configuration")
	ErrInvalidPrompt = errors.New("prompt template could not be rendered")
	ErrNilGenerator  = errors.New("nil generator")
)
