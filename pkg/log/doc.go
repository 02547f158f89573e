/*
Package log wraps zerolog to provide the broker's structured logging:
JSON or console output selected by Config.JSONOutput, level filtering via
Config.Level, and child loggers scoped to a component, worker, task, or
connection (WithComponent, WithWorkerID, WithTaskID, WithConnID).

Init must be called once at startup before any package-level helper
(Info, Debug, Warn, Error, Errorf, Fatal) or With* constructor is used.
*/
package log
