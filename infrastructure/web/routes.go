package web

import "strings"

// RouteGroup registers routes under a shared path prefix and middleware.
type RouteGroup struct {
	wh         *WebHandler
	prefix     string
	middleware []Middleware
}

// Group starts a RouteGroup at prefix.
func (wh *WebHandler) Group(prefix string, mw ...Middleware) *RouteGroup {
	return &RouteGroup{
		wh:         wh,
		prefix:     strings.TrimSuffix(prefix, "/"),
		middleware: mw,
	}
}

// Handle registers h at the group prefix plus path.
func (g *RouteGroup) Handle(method, path string, h HandlerFunc, mw ...Middleware) {
	all := make([]Middleware, 0, len(g.middleware)+len(mw))
	all = append(all, g.middleware...)
	all = append(all, mw...)
	g.wh.Handle(method, g.prefix+path, h, all...)
}

func (g *RouteGroup) GET(path string, h HandlerFunc, mw ...Middleware) {
	g.Handle("GET", path, h, mw...)
}

func (g *RouteGroup) POST(path string, h HandlerFunc, mw ...Middleware) {
	g.Handle("POST", path, h, mw...)
}
