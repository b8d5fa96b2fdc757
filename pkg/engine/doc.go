// Package engine serves stub responses over HTTP and HTTPS.
//
// For every request the Handler buffers the body, resolves a mapping,
// assembles the response from the mapping, renders the body template,
// waits out the configured latency and writes the result. A request with the
// debug query parameter gets a JSON envelope describing each of those steps
// instead of the body.
//
// Internal endpoints live under /__stubdb/: health, ready and metrics.
package engine
