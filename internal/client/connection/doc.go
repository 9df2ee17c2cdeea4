// Package connection is the single egress point for TrakJobs API traffic.
//
// HTTPClient sends JSON requests relative to a base URL with a fixed 30s
// timeout and no cookie jar. Before every send it attaches the bearer
// token held by the session store; after every response it looks for a
// token-problem 401 and, when it finds one, clears the session and sends
// the navigator to the login route.
//
//   - http.go: HTTPClient, requests and responses
//   - intercept.go: request and response interceptors
//   - navigator.go: Navigator and the public route table
package connection
