/*
Package tasks coordinates mutations of the to-do list.

The Manager serializes writes (locally and, optionally, across processes with a
ports.DistributedLocker) and publishes a revision counter through an
observable.Store so that presenters can refresh their views after each change.
*/
package tasks
