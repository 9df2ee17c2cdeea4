// Package listing holds the UI-facing state controllers of the client.
//
// A controller owns the state of one view (a list, a detail form, a
// search box), calls a resource service and publishes immutable State
// snapshots to observers. Responses that arrive after the controller was
// deactivated, or after a newer request superseded them, are dropped.
//
//   - ListController: pagination, debounced search, filters and sort
//   - DetailController: load, create, update and delete of one record
//   - SearchController: debounced free-text lookup
package listing
