// Package metrics defines the observability contracts the pipeline
// records through: run outcomes, stage timings, detected conflicts and
// resolution transitions. Concrete sinks live under infra/metrics and
// are instantiated from configuration via the factory registry.
package metrics
