// Package repl implements "trakjobs-cli browse", an interactive client
// list driven by a listing.ListController.
//
// Typing "/acme" searches (debounced like a search box), "next" and
// "prev" page, "sort", "status" and "category" change the query. Each
// change re-renders the current page once its fetch settles.
package repl
