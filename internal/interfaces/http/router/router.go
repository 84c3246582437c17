// Package router assembles the gin engine of the integration API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultAPIVersion prefixes every mounted resource
const DefaultAPIVersion = "v1"

// Route is one endpoint of a Mount
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// Mount is a resource prefix with the guards in front of its routes.
// Guards also apply to every nested mount.
type Mount struct {
	Prefix   string
	Guards   []gin.HandlerFunc
	Routes   []Route
	Children []*Mount
}

// NewMount creates an empty mount at prefix
func NewMount(prefix string, guards ...gin.HandlerFunc) *Mount {
	return &Mount{Prefix: prefix, Guards: guards}
}

// Guard appends guards; nil handlers are skipped so optional guards can be passed as-is
func (m *Mount) Guard(guards ...gin.HandlerFunc) *Mount {
	for _, g := range guards {
		if g != nil {
			m.Guards = append(m.Guards, g)
		}
	}
	return m
}

// GET adds a GET route
func (m *Mount) GET(path string, handlers ...gin.HandlerFunc) *Mount {
	return m.add(http.MethodGet, path, handlers)
}

// POST adds a POST route
func (m *Mount) POST(path string, handlers ...gin.HandlerFunc) *Mount {
	return m.add(http.MethodPost, path, handlers)
}

func (m *Mount) add(method, path string, handlers []gin.HandlerFunc) *Mount {
	m.Routes = append(m.Routes, Route{Method: method, Path: path, Handlers: handlers})
	return m
}

// Nest creates a child mount under m
func (m *Mount) Nest(prefix string) *Mount {
	child := NewMount(prefix)
	m.Children = append(m.Children, child)
	return child
}

func (m *Mount) attach(parent *gin.RouterGroup) {
	group := parent.Group(m.Prefix, m.Guards...)
	for _, rt := range m.Routes {
		group.Handle(rt.Method, rt.Path, rt.Handlers...)
	}
	for _, child := range m.Children {
		child.attach(group)
	}
}

// API mounts resources under /api/<version>
type API struct {
	group   *gin.RouterGroup
	version string
}

// NewAPI opens the versioned group on engine; an empty version means DefaultAPIVersion
func NewAPI(engine *gin.Engine, version string) *API {
	if version == "" {
		version = DefaultAPIVersion
	}
	return &API{group: engine.Group("/api/" + version), version: version}
}

// BasePath returns the versioned prefix
func (a *API) BasePath() string {
	return a.group.BasePath()
}

// Attach registers each mount and its children; nil mounts are ignored
func (a *API) Attach(mounts ...*Mount) *API {
	for _, m := range mounts {
		if m != nil {
			m.attach(a.group)
		}
	}
	return a
}
