// Package command parses inbound command text and dispatches it to the
// registry.
//
// The parser is strict: it turns a whitespace-tokenized line into one of a
// closed set of command variants, each carrying its already-validated
// arguments. The router dispatches variants with an exhaustive type switch
// and maps every result (success or domain failure) to a typed Outcome for
// the message layer to render. Domain failures never escape as errors; the
// only unrecovered condition is a store failure, which surfaces as an
// outcome that must not read as success.
package command
