// Package manifest defines the persisted registry model.
//
// The manifest is a single TOML document holding every project, every
// linked profile, and the global manager list. It is always read and
// written as one unit; see internal/store for the file contract.
//
// Lookup helpers are pure and operate on whatever snapshot they are given.
// Reverse profile lookup (GitHub username to Slack ID) returns the first
// match in sorted Slack-ID order: usernames are not unique across profiles,
// so a username linked from two Slack accounts resolves to the
// lexicographically smaller one.
package manifest
