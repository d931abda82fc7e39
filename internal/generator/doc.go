// Package generator turns a goal into a list of subtasks by running an
// external LLM command line tool (claude, codex, or any configured binary)
// and parsing its reply.
//
// A Generator is built from an explicit Config:
//
//	gen, err := generator.New("claude", generator.Config{Model: "sonnet"})
//	tasks, err := gen.Generate(ctx, "Build a website", 5)
//
// Replies are read as a JSON object {"tasks": [...]} validated against the
// subtask schema, a bare JSON array, or plain text with one task per line.
package generator
