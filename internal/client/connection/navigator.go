package connection

import (
	"strings"
	"sync"
)

// LoginRoute is where a token problem sends the user.
const LoginRoute = "/login"

// PublicRoutes never redirect to the login route: the user is already on
// an authentication screen.
var PublicRoutes = []string{"/login", "/register", "/forgot-password", "/reset-password"}

// IsPublicRoute reports whether location is, or is below, a public route.
func IsPublicRoute(location string) bool {
	for _, r := range PublicRoutes {
		if strings.HasPrefix(location, r) {
			return true
		}
	}
	return false
}

// Navigator is the UI location the HTTP client may redirect.
type Navigator interface {
	// Location returns the current route, e.g. "/clients".
	Location() string
	// Navigate forces a move to route.
	Navigate(route string)
}

// Router is a Navigator that tracks the current route in memory and
// reports forced moves to a callback.
type Router struct {
	mu         sync.Mutex
	location   string
	onNavigate func(route string)
}

// NewRouter creates a Router at location. onNavigate may be nil.
func NewRouter(location string, onNavigate func(route string)) *Router {
	return &Router{location: location, onNavigate: onNavigate}
}

// Location returns the current route.
func (r *Router) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

// SetLocation records a move made by the UI itself. It does not fire the
// callback.
func (r *Router) SetLocation(route string) {
	r.mu.Lock()
	r.location = route
	r.mu.Unlock()
}

// Navigate moves to route and fires the callback.
func (r *Router) Navigate(route string) {
	r.mu.Lock()
	r.location = route
	cb := r.onNavigate
	r.mu.Unlock()

	if cb != nil {
		cb(route)
	}
}

// nopNavigator stays on "/" and ignores navigation.
type nopNavigator struct{}

func (nopNavigator) Location() string { return "/" }
func (nopNavigator) Navigate(string)  {}
