package ambient

import (
	"context"
	"maps"
	"net/http"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
)

// DefaultMaxBreadcrumbs is the default size of the breadcrumb trail.
const DefaultMaxBreadcrumbs = 100

// contextKey is the context key for storing the ambient context handle.
type contextKey struct{}

// Context holds the diagnostic state consulted when an error report is built:
// user, HTTP request, breadcrumbs, last event id, tags and extras.
//
// One Context belongs to one logical operation (an HTTP request, a job, a
// delivery worker). It is safe for concurrent use.
type Context struct {
	user           *sentry.User
	request        *sentry.Request
	tags           map[string]string
	extras         map[string]any
	lastEventID    sentry.EventID
	breadcrumbs    []*sentry.Breadcrumb
	maxBreadcrumbs int
	mu             sync.RWMutex
}

// Option configures a Context.
type Option func(*Context)

// WithMaxBreadcrumbs bounds the breadcrumb trail. Non-positive values are ignored.
func WithMaxBreadcrumbs(n int) Option {
	return func(c *Context) {
		if n > 0 {
			c.maxBreadcrumbs = n
		}
	}
}

// New creates an empty ambient context.
func New(opts ...Option) *Context {
	c := &Context{
		maxBreadcrumbs: DefaultMaxBreadcrumbs,
		tags:           make(map[string]string),
		extras:         make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithContext returns a copy of ctx carrying c.
func WithContext(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the ambient context stored in ctx, or nil.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	if c, ok := ctx.Value(contextKey{}).(*Context); ok {
		return c
	}
	return nil
}

// SetUser sets the current user.
func (c *Context) SetUser(u sentry.User) {
	u.Data = maps.Clone(u.Data)
	c.mu.Lock()
	c.user = &u
	c.mu.Unlock()
}

// User returns the current user and whether one is set.
func (c *Context) User() (sentry.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return sentry.User{}, false
	}
	return copyUser(*c.user), true
}

// SetRequest records the HTTP request being served.
func (c *Context) SetRequest(r *http.Request) {
	if r == nil {
		c.SetHTTP(nil)
		return
	}
	c.SetHTTP(sentry.NewRequest(r))
}

// SetHTTP sets the HTTP request descriptor directly. Nil clears it.
func (c *Context) SetHTTP(req *sentry.Request) {
	var cp *sentry.Request
	if req != nil {
		cp = copyRequest(req)
	}
	c.mu.Lock()
	c.request = cp
	c.mu.Unlock()
}

// HTTP returns a copy of the HTTP request descriptor, or nil.
func (c *Context) HTTP() *sentry.Request {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.request == nil {
		return nil
	}
	return copyRequest(c.request)
}

// RecordBreadcrumb appends b to the trail, evicting the oldest entry once the
// trail is full. A zero timestamp is set to the current time.
func (c *Context) RecordBreadcrumb(b *sentry.Breadcrumb) {
	if b == nil {
		return
	}
	cp := copyBreadcrumb(b)
	if cp.Timestamp.IsZero() {
		cp.Timestamp = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.breadcrumbs) >= c.maxBreadcrumbs {
		c.breadcrumbs = append(c.breadcrumbs[:0:0], c.breadcrumbs[len(c.breadcrumbs)-c.maxBreadcrumbs+1:]...)
	}
	c.breadcrumbs = append(c.breadcrumbs, cp)
}

// Breadcrumbs returns a copy of the trail, oldest first.
func (c *Context) Breadcrumbs() []*sentry.Breadcrumb {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyBreadcrumbs(c.breadcrumbs)
}

// SetLastEventID sets the id of the most recently reported event.
func (c *Context) SetLastEventID(id sentry.EventID) {
	c.mu.Lock()
	c.lastEventID = id
	c.mu.Unlock()
}

// LastEventID returns the id of the most recently reported event.
func (c *Context) LastEventID() sentry.EventID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastEventID
}

// AddTag sets a tag.
func (c *Context) AddTag(key, value string) {
	c.mu.Lock()
	c.tags[key] = value
	c.mu.Unlock()
}

// RemoveTag deletes a tag.
func (c *Context) RemoveTag(key string) {
	c.mu.Lock()
	delete(c.tags, key)
	c.mu.Unlock()
}

// Tags returns a copy of the tags.
func (c *Context) Tags() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.tags)
}

// AddExtra sets an extra value.
func (c *Context) AddExtra(key string, value any) {
	c.mu.Lock()
	c.extras[key] = value
	c.mu.Unlock()
}

// RemoveExtra deletes an extra value.
func (c *Context) RemoveExtra(key string) {
	c.mu.Lock()
	delete(c.extras, key)
	c.mu.Unlock()
}

// Extras returns a copy of the extras.
func (c *Context) Extras() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.extras)
}

// Clear resets every field to its empty state.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.request = nil
	c.breadcrumbs = nil
	c.lastEventID = ""
	c.tags = make(map[string]string)
	c.extras = make(map[string]any)
}

// SetUser sets the user on the ambient context in ctx, if any.
func SetUser(ctx context.Context, u sentry.User) {
	if c := FromContext(ctx); c != nil {
		c.SetUser(u)
	}
}

// AddBreadcrumb records a breadcrumb on the ambient context in ctx, if any.
func AddBreadcrumb(ctx context.Context, b *sentry.Breadcrumb) {
	if c := FromContext(ctx); c != nil {
		c.RecordBreadcrumb(b)
	}
}

// SetTag sets a tag on the ambient context in ctx, if any.
func SetTag(ctx context.Context, key, value string) {
	if c := FromContext(ctx); c != nil {
		c.AddTag(key, value)
	}
}

// SetExtra sets an extra on the ambient context in ctx, if any.
func SetExtra(ctx context.Context, key string, value any) {
	if c := FromContext(ctx); c != nil {
		c.AddExtra(key, value)
	}
}

func copyUser(u sentry.User) sentry.User {
	u.Data = maps.Clone(u.Data)
	return u
}

func copyRequest(r *sentry.Request) *sentry.Request {
	cp := *r
	cp.Headers = maps.Clone(r.Headers)
	cp.Env = maps.Clone(r.Env)
	return &cp
}

func copyBreadcrumb(b *sentry.Breadcrumb) *sentry.Breadcrumb {
	cp := *b
	cp.Data = maps.Clone(b.Data)
	return &cp
}

func copyBreadcrumbs(in []*sentry.Breadcrumb) []*sentry.Breadcrumb {
	if len(in) == 0 {
		return nil
	}
	out := make([]*sentry.Breadcrumb, len(in))
	for i, b := range in {
		out[i] = copyBreadcrumb(b)
	}
	return out
}
