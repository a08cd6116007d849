// Package services defines shared utilities consumed by the pipeline stages
// and the DDR client.
//
// Key responsibilities:
//   - Context helpers that stamp stage names, remote operation names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into the closed taxonomy reported at the pipeline boundary (user input,
//     authentication, protocol, transport, configuration).
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability) stays uniform across the pipeline.
package services
