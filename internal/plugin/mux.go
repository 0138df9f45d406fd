package plugin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
)

var (
	// ErrDuplicateRoute indicates a method and path were mounted twice.
	ErrDuplicateRoute = errors.New("route already registered")
	// ErrInvalidRoute indicates a path http.ServeMux cannot mount literally.
	ErrInvalidRoute = errors.New("invalid route")
)

// Route describes a mounted handler.
type Route struct {
	Method string
	Path   string
}

// Pattern returns the http.ServeMux pattern for the route.
func (r Route) Pattern() string {
	return r.Method + " " + r.Path
}

type routeTable struct {
	mu     sync.RWMutex
	mux    *http.ServeMux
	seen   map[string]struct{}
	routes []Route
}

// Mux is a Router backed by http.ServeMux. Groups share the parent's table.
type Mux struct {
	table  *routeTable
	prefix string
}

// NewMux returns an empty route table.
func NewMux() *Mux {
	return &Mux{
		table: &routeTable{
			mux:  http.NewServeMux(),
			seen: make(map[string]struct{}),
		},
	}
}

// Handle mounts h at method and the group prefix joined with path.
func (m *Mux) Handle(method, path string, h http.Handler) error {
	route := Route{Method: method, Path: JoinPath(m.prefix, path)}
	pattern := route.Pattern()

	t := m.table
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.seen[pattern]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRoute, pattern)
	}
	// Mounted paths are literal; braces would turn a segment into a wildcard.
	if strings.ContainsAny(route.Path, "{}") {
		return fmt.Errorf("%w: %s: path contains wildcard characters", ErrInvalidRoute, pattern)
	}
	if err := mount(t.mux, pattern, h); err != nil {
		return err
	}
	t.seen[pattern] = struct{}{}
	t.routes = append(t.routes, route)
	return nil
}

// mount reports the panics http.ServeMux raises for unusable patterns as errors.
func mount(mux *http.ServeMux, pattern string, h http.Handler) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s: %v", ErrInvalidRoute, pattern, rec)
		}
	}()
	mux.Handle(pattern, h)
	return nil
}

// Group returns a Router mounting routes under prefix, relative to m's prefix.
func (m *Mux) Group(prefix string) Router {
	return &Mux{table: m.table, prefix: JoinPath(m.prefix, prefix)}
}

// Register applies p to m.
func (m *Mux) Register(ctx context.Context, p Plugin, opts Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p(ctx, m, opts)
}

// Routes lists mounted routes in registration order.
func (m *Mux) Routes() []Route {
	m.table.mu.RLock()
	defer m.table.mu.RUnlock()

	out := make([]Route, len(m.table.routes))
	copy(out, m.table.routes)
	return out
}

// ServeHTTP dispatches to the mounted handlers.
func (m *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.table.mux.ServeHTTP(w, r)
}
