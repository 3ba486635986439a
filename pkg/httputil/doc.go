// Package httputil provides the JSON plumbing shared by HTTP handlers.
//
// # Responses
//
// [WriteJSON] encodes a value with a status code. [WriteError] turns an
// error into a JSON body of the form
//
//	{"code": "SESSION_NOT_FOUND", "message": "session \"...\" not found"}
//
// with the status chosen by [StatusFor] from the error's code:
//
//   - INVALID_*: 400 Bad Request
//   - *_NOT_FOUND: 404 Not Found
//   - SESSION_EXPIRED: 410 Gone
//   - UNSUPPORTED: 501 Not Implemented
//   - anything else: 500, with the message hidden
//
// # Requests
//
// [DecodeJSON] reads a bounded request body and rejects unknown fields, so
// a misspelt parameter fails loudly instead of being ignored.
package httputil
