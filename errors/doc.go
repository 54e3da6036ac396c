// Package errors provides the structured error type shared by the REST
// client and the fake API. Every failure carries a machine-readable code so
// callers can tell a broken connection from an undecodable body or a
// rejected request without string matching.
package errors
