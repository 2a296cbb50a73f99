// Package slack is the chat transport: a Socket Mode client that receives
// slash commands, dispatches them through the command router, and posts the
// rendered outcome back to the invoking channel.
//
// Commands are handled concurrently; serialization of registry mutations
// happens inside internal/registry, not here. Credentials come from the
// process environment via internal/config.
package slack
