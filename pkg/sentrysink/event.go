package sentrysink

import (
	"maps"
	"strings"

	"github.com/getsentry/sentry-go"

	"github.com/dmitrymomot/sentrylog/pkg/sink"
)

// buildEvent converts rec with the configured converter and layers context on
// top: static tags and extras, then diagnostics, then the ambient context.
// Later layers win on key collisions.
func (s *Sink) buildEvent(rec sink.Record) *sentry.Event {
	sr := rec.SlogRecord()
	event := s.converter(s.addSource, s.replaceAttr, nil, nil, &sr, s.hub)
	if event == nil {
		return nil
	}

	if rec.Logger != "" {
		event.Logger = rec.Logger
	}
	if len(event.Exception) == 0 && rec.Err != nil {
		event.SetException(rec.Err, s.maxErrDepth)
	}
	if event.Tags == nil {
		event.Tags = make(map[string]string)
	}
	if event.Extra == nil {
		event.Extra = make(map[string]any)
	}

	maps.Copy(event.Tags, s.tags)
	maps.Copy(event.Extra, s.extras)

	for k, v := range rec.Diagnostics {
		if _, ok := s.mdcTags[k]; ok {
			event.Tags[k] = v
			continue
		}
		event.Extra[k] = v
	}

	s.applyAmbient(event)
	s.markInApp(event)
	return event
}

func (s *Sink) applyAmbient(event *sentry.Event) {
	amb := s.ambient
	if u, ok := amb.User(); ok {
		event.User = u
	}
	if req := amb.HTTP(); req != nil {
		event.Request = req
	}
	event.Breadcrumbs = append(event.Breadcrumbs, amb.Breadcrumbs()...)
	maps.Copy(event.Tags, amb.Tags())
	maps.Copy(event.Extra, amb.Extras())
	if id := amb.LastEventID(); id != "" {
		event.Tags[LastEventIDTag] = string(id)
	}
}

// markInApp flags stack frames whose module matches a configured prefix.
// Without prefixes the SDK's own in-app detection is kept.
func (s *Sink) markInApp(event *sentry.Event) {
	if len(s.appPackages) == 0 {
		return
	}
	for i := range event.Exception {
		markFrames(event.Exception[i].Stacktrace, s.appPackages)
	}
	for i := range event.Threads {
		markFrames(event.Threads[i].Stacktrace, s.appPackages)
	}
}

func markFrames(st *sentry.Stacktrace, prefixes []string) {
	if st == nil {
		return
	}
	for i := range st.Frames {
		st.Frames[i].InApp = isAppModule(st.Frames[i].Module, prefixes)
	}
}

func isAppModule(module string, prefixes []string) bool {
	for _, p := range prefixes {
		if module == p || strings.HasPrefix(module, p+"/") || strings.HasPrefix(module, p+".") {
			return true
		}
	}
	return false
}
