// Package mocks provides shared test doubles for the interfaces that reach
// outside the process: the language model and token validation.
//
// Usage:
//
//	gen := &mocks.MockGenerator{Responses: []string{firstReply, secondReply}}
//	controller, _ := generation.NewController(gen, logger)
//	// ...
//	assert.Equal(t, 2, gen.CallCount())
package mocks
