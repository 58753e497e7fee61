// Package probe implements a single-shot Stratum V1 health probe.
//
// # Sequence
//
// Run opens one connection to a pool endpoint and walks the handshake:
//  1. mining.subscribe with the configured user agent (id 1).
//  2. mining.authorize with user and password, only when a user is set.
//  3. A short wait for a mining.notify push, only when the notify_seen
//     metric was requested. The wait lasts at most NotifyWindow and never
//     runs past the probe deadline.
//
// The observations end up in Facts and Metric.Project turns them into the
// one scalar a monitoring system stores.
//
// # Timing
//
// A single deadline, start plus Config.Timeout, bounds connect, TLS
// handshake, every write and every read. There are no retries and no
// background goroutines.
//
// # Framing
//
// Messages are newline-terminated JSON. Conn keeps the bytes that follow the
// last newline between reads, so a response split over several TCP segments
// and several messages packed in one segment both decode correctly.
//
// # Error Model
//
// ConnectError, ErrTimeout and ErrClosed end the probe. A line that is not a
// JSON object yields a MalformedResponseError which only leaves that stage's
// facts at their zero value; the handshake moves on. Measure folds every
// failure into the value "0".
package probe
