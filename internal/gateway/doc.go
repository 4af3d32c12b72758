// Package gateway provides an HTTP client for the route-analysis backend.
//
// # Overview
//
// The backend is a small REST service, usually running on a laptop on the
// same network as the device doing the capturing. This package resolves
// where it lives, builds JSON and multipart requests, and turns every
// failure into a classified *Error whose Message can be shown to the user
// as-is.
//
// # Files
//
//   - client.go: Client, Send/Do, RequestData, Upload, Probe
//   - multipart.go: multipart/form-data body construction
//   - errors.go: Error, Kind, failure classification
//   - api.go: typed calls for each backend path
//   - types.go: request and response payloads
//
// # Requests
//
// Every request:
//   - Resolves the endpoint afresh through its EndpointSource
//   - Sets User-Agent: crux/0.1
//   - Sets x-api-key only when the resolved key is non-empty
//   - Runs under a timeout derived from the caller's context
//
// JSON calls also set Content-Type and Accept to application/json. Bodies
// are encoded with encoding/json, so time.Time values go out as RFC 3339
// (ISO-8601).
//
// # Timeouts
//
//   - JSON requests: 30s
//   - Uploads: 120s (large images need the headroom)
//   - Probe: 5s
//
// A Request or Upload may override its own timeout. Because timeouts are
// applied to the caller's context, any other cancellation can be
// substituted without changing how requests are built.
//
// # Uploads
//
// Upload writes each string field as its own part, then the file under the
// field name "file", then the closing boundary. The boundary is generated
// per call.
//
// # Errors
//
//   - KindTimeout, KindDNS, KindRefused, KindUnreachable, KindTransport:
//     the backend was never reached; messages point at the usual
//     misconfigurations (different network, loopback-only bind, typo)
//   - KindCanceled: the caller's context was cancelled
//   - KindStatus: non-2xx; Message is the body's "detail" or "message"
//     string, else the raw body text, else a generic phrase
//   - KindDecode: the body did not match the expected type
//
// # Design
//
// The client does not retry. A failed call is surfaced once and the next
// attempt is an explicit caller action.
package gateway
