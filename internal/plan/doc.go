// Package plan renders, parses, and updates plan documents.
//
// A plan document is a markdown checklist produced for a single goal:
//
//	# Project Plan: <goal>
//
//	## Overview
//	This project plan was generated on <YYYY-MM-DD> to accomplish the task: "<goal>".
//
//	## Tasks
//	- [ ] <task 1>
//	- [x] <task 2>
//
//	## Progress
//	- 1/2 tasks completed (50%)
//
//	## Timeline
//	...
//
// # Task Section
//
// The task section begins on the line after the first "## Tasks" header and
// runs through every contiguous line starting with "- ". A task's identity
// is its 0-based position in that run; there is no other identifier.
//
// # Updates
//
// Updates only ever promote tasks to done. Supplied indices outside the task
// range are ignored, and a missing "## Progress" header leaves the summary
// line alone. The only hard failure is a missing task section, reported as a
// *FormatError. Every line outside the task section and the progress line is
// written back byte for byte.
//
// # Persistence
//
// The rendered text is the only durable state. Store writes one file per
// goal, named from the normalized goal text; two goals that normalize to
// the same name share a file, and the later write wins.
package plan
