// Package service provides the resource services of the TrakJobs client.
//
// A resource service exposes one method per API operation and translates
// between the UI shape of a record (camelCase field names, form strings)
// and its wire shape (snake_case names, typed values):
//
//   - AuthService: login, registration, password reset, logout, profile
//   - ClientService: vendor-scoped client CRUD, search and logo upload
//
// Every failure leaving a service is a *apierr.NormalizedError whose field
// errors use UI field names.
package service
