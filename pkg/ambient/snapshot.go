package ambient

import (
	"context"
	"maps"

	"github.com/getsentry/sentry-go"
)

// Snapshot is an immutable copy of an ambient context taken at one instant.
// The zero value carries nothing.
type Snapshot struct {
	user        *sentry.User
	request     *sentry.Request
	tags        map[string]string
	extras      map[string]any
	lastEventID sentry.EventID
	breadcrumbs []*sentry.Breadcrumb
}

// Capture snapshots the ambient context stored in ctx.
// Returns an empty snapshot if ctx carries none.
func Capture(ctx context.Context) Snapshot {
	return FromContext(ctx).Snapshot()
}

// Snapshot copies the current state. Safe to call on a nil Context.
func (c *Context) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		lastEventID: c.lastEventID,
		breadcrumbs: copyBreadcrumbs(c.breadcrumbs),
	}
	if c.user != nil {
		u := copyUser(*c.user)
		s.user = &u
	}
	if c.request != nil {
		s.request = copyRequest(c.request)
	}
	if len(c.tags) > 0 {
		s.tags = maps.Clone(c.tags)
	}
	if len(c.extras) > 0 {
		s.extras = maps.Clone(c.extras)
	}
	return s
}

// User returns the captured user and whether one was set.
func (s Snapshot) User() (sentry.User, bool) {
	if s.user == nil {
		return sentry.User{}, false
	}
	return copyUser(*s.user), true
}

// HTTP returns the captured request descriptor, or nil.
func (s Snapshot) HTTP() *sentry.Request {
	if s.request == nil {
		return nil
	}
	return copyRequest(s.request)
}

// Breadcrumbs returns the captured trail, oldest first.
func (s Snapshot) Breadcrumbs() []*sentry.Breadcrumb {
	return copyBreadcrumbs(s.breadcrumbs)
}

// LastEventID returns the captured correlation id.
func (s Snapshot) LastEventID() sentry.EventID {
	return s.lastEventID
}

// Tags returns the captured tags.
func (s Snapshot) Tags() map[string]string {
	return maps.Clone(s.tags)
}

// Extras returns the captured extras.
func (s Snapshot) Extras() map[string]any {
	return maps.Clone(s.extras)
}

// IsEmpty reports whether nothing was captured.
// An empty breadcrumb trail and no trail at all are the same thing.
func (s Snapshot) IsEmpty() bool {
	return s.user == nil &&
		s.request == nil &&
		s.lastEventID == "" &&
		len(s.breadcrumbs) == 0 &&
		len(s.tags) == 0 &&
		len(s.extras) == 0
}

// Restore writes the snapshot into c. User, request and last event id are set
// when present; breadcrumbs are replayed in order; tags and extras are merged
// key by key. Absent fields are left untouched.
func (s Snapshot) Restore(c *Context) {
	if c == nil {
		return
	}
	if s.user != nil {
		c.SetUser(*s.user)
	}
	if s.request != nil {
		c.SetHTTP(s.request)
	}
	if s.lastEventID != "" {
		c.SetLastEventID(s.lastEventID)
	}
	for _, b := range s.breadcrumbs {
		c.RecordBreadcrumb(b)
	}
	for k, v := range s.tags {
		c.AddTag(k, v)
	}
	for k, v := range s.extras {
		c.AddExtra(k, v)
	}
}
