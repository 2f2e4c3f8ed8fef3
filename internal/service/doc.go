// Package service contains the application use cases. Each service wires
// the generation controller, parsers, validators, prompts and registries
// for one kind of artifact: question sets, challenges, reports, answer
// evaluations, challenge feedback and difficulty progression.
//
// Services receive their collaborators through constructor injection and
// never hold package-level state.
package service
