// Package web serves the room page and presents one-time alerts on it.
//
// Each page request renders the shell, runs the alert presenter against the
// request's cookies and the parsed document, and answers with the rendered
// page. When client alerts are enabled the cookie is left for the
// WebAssembly presenter in the browser instead.
package web
