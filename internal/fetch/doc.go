// Package fetch downloads component packages over HTTP. Transient failures
// (network errors and 5xx responses) are retried with exponential backoff;
// client errors fail immediately. Downloads block until they complete:
// there is no timeout and no integrity check.
package fetch
