package plugin

import (
	"context"
	"net/http"
	"strings"
)

// Options are shared by every plugin mounted through a single Register call.
type Options struct {
	// Prefix is prepended to every route the plugin mounts. Empty means the
	// plugin's own default.
	Prefix string
	// Settings lists settings files read by plugins that need them.
	Settings []string
}

// PrefixOr returns the configured prefix or def when none is set.
func (o Options) PrefixOr(def string) string {
	if o.Prefix == "" {
		return def
	}
	return o.Prefix
}

// Router is the route table capability handed to plugins.
type Router interface {
	// Handle mounts h for method and path relative to the router's prefix.
	Handle(method, path string, h http.Handler) error
	// Group returns a Router whose routes are mounted under prefix.
	Group(prefix string) Router
	// Register applies p to this router with opts.
	Register(ctx context.Context, p Plugin, opts Options) error
}

// Plugin mounts routes on r. It runs once, at registration time.
type Plugin func(ctx context.Context, r Router, opts Options) error

// Multi combines plugins into one. Each plugin is registered in order with
// the same options; the first error is returned as is and the remaining
// plugins are not registered.
func Multi(plugins ...Plugin) Plugin {
	return func(ctx context.Context, r Router, opts Options) error {
		for _, p := range plugins {
			if p == nil {
				continue
			}
			if err := r.Register(ctx, p, opts); err != nil {
				return err
			}
		}
		return nil
	}
}

// JoinPath composes a route prefix and path into a single absolute path.
func JoinPath(prefix, path string) string {
	prefix = strings.TrimRight(prefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if path == "" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return prefix + path
}
