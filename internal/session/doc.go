// Package session runs a persistent, line-oriented session to a peer.
//
// An Engine owns one connection at a time. It dials, flushes commands queued
// while disconnected, dispatches inbound lines, keeps the connection alive with
// PING after a quiet interval, and reconnects with backoff when the connection
// fails. The END / BYE / PING / CONNECTED commands and unknown-command handling
// are common to every peer; everything else is passed to a Handler.
//
// Lines travel over raw TCP (newline delimited) or WebSocket text frames.
package session
