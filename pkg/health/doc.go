// Package health runs named checks and serves them as liveness and readiness
// probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"sentry": app.Healthcheck(),
//	}))
//
// Responses are plain text unless JSON is requested with
// Accept: application/json or ?format=json.
package health
