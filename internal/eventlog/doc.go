// Package eventlog is the trader's append-only event log.
//
// Every line is prefixed with a local timestamp (yyyy/MM/dd HH:mm:ss.SSS) and is
// flushed to stable storage before Write returns, so the log survives an abrupt stop.
// A Sink can be attached to mirror each line elsewhere (the database recorder).
package eventlog
