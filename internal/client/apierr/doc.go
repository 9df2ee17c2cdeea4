// Package apierr collapses every failed API call into one error shape.
//
// The HTTP client returns *ResponseError for non-2xx responses and the
// transport error when no response arrived. Normalize turns either, or a
// local *domain.DomainError, into a *NormalizedError carrying a display
// message, optional per-field messages and the HTTP status (0 when there
// was no response).
package apierr
