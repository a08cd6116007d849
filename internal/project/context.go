package project

import "sync"

// Context is the shared live-project slot, the analog of the host
// application's single open project. One pipeline run owns it at a time;
// the snapshot stage loads locale variants into it and the orchestrator
// restores the original when the run finishes.
type Context struct {
	mu      sync.Mutex
	current *Project
}

// NewContext returns an empty project context.
func NewContext() *Context {
	return &Context{}
}

// Read loads the project at path into the context and returns it.
func (c *Context) Read(path string) (*Project, error) {
	proj, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.current = proj
	c.mu.Unlock()
	return proj, nil
}

// Current returns the project the context points at, or nil.
func (c *Context) Current() *Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set makes proj the current project.
func (c *Context) Set(proj *Project) {
	c.mu.Lock()
	c.current = proj
	c.mu.Unlock()
}
