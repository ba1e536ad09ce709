// Package testutil provides deterministic deciders for driving a
// sorter.Sorter without a human.
//
// Oracle answers from a fixed preference ranking, Scripted replays a list
// of answers, and StopAfter cuts any decider off after n answers so tests
// can simulate a user closing the app mid-sort.
package testutil
