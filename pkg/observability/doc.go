/*
Package observability provides Prometheus instrumentation for tend.

Metrics are registered on a private registry owned by the Metrics value, so
several applications can live in one process (and in one test binary) without
colliding on the global registerer. Expose them with promhttp.HandlerFor.
*/
package observability
