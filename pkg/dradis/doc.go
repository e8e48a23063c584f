// Package dradis is the client for the Dradis Pro REST API.
//
// It owns three things:
//
//   - Request construction: every call carries the static token
//     authorization header and, for project-scoped endpoints, the
//     Dradis-Project-Id header.
//   - The field codec: vulnerability and content-block fields travel as a
//     single delimited text blob ("#[Name]#\r\nvalue\r\n\r\n" sections)
//     that the Dradis server parses. Encoding must be byte-exact.
//   - Merge-based updates: the API has no partial-update endpoint for
//     issues or content blocks, so updates read the current record,
//     overlay the supplied fields, and write the full re-encoded blob.
//
// The read half and write half of a merge update are not atomic. A
// concurrent writer between them can be silently overwritten (classic
// lost update). The API exposes no ETag or version token, so the client
// cannot close that gap; callers must serialize updates per entity.
//
// There are no retries and no caching: every method is a single HTTP
// round-trip, except the documented read-before-write pairs.
package dradis
