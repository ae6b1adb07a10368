// Package metrics records build step observations.
//
// Components receive a Recorder through injection and default to NoopRecorder,
// so no nil checks are needed at call sites. PrometheusRecorder registers the
// isbld series on a registry; WriteTextfile dumps that registry in the text
// exposition format for the node_exporter textfile collector, since isbld is
// a short-lived process with nothing to scrape.
package metrics
