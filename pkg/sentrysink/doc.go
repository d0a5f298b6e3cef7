// Package sentrysink reports log records to Sentry.
//
// [Sink] runs on the delivery side of an asynchronous pipeline. It owns a
// dedicated *sentry.Hub and an [ambient.Context] scoped to the worker. For
// every admitted record it:
//
//  1. clears the worker context and restores the snapshot the record carries
//     (the [Hook], [Restore] by default);
//  2. builds an event with sentryslog's converter;
//  3. layers static tags and extras, diagnostic keys (promoted to tags when
//     listed in [WithMDCTags]) and the restored context on top;
//  4. captures it and remembers the new event id as the correlation id.
//
// Steps 1 to 4 run under one lock, so a record never sees context left
// behind by another.
//
// Client construction is pluggable through [RegisterClientFactory], and
// [ParseDSN] understands the stacktrace.app.packages query option used for
// in-app frame detection.
package sentrysink
