// Package http exposes the fitness services as a JSON API.
//
// Every resource is mounted under /api with the same shape:
//   - GET /api/{resource}: all rows in key order.
//   - POST /api/{resource}: 201 with {"message", "<key>": id, "data": row}.
//   - GET|PUT|DELETE /api/{resource}/{id}: single row operations. Non numeric
//     ids yield 400.
//
// Bookings accept only a status change on PUT. GET
// /api/users/{id}/fitness-progress lists one member's history, newest first.
//
// Sessions are issued by POST /api/sessions and presented either as an
// Authorization bearer token or the session_token cookie. POST /api/register
// creates a student account; POST /api/accounts is reserved for administrators.
// /health and /ready are public. Any other GET outside /api is answered from
// the static client bundle when one is configured.
package http
