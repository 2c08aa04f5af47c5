// Package gresult keeps the failures of a stream as data.
//
// A Stream delivers items followed by at most one terminal signal, a
// failure or a completion. Capture turns a stream that may fail into a
// stream of Result tags that never fails: every item becomes a success
// Result and the failure, if any, becomes one final failure Result.
// Successes and Failures project the combined stream back onto its two
// paths, and Split does both from a single subscription.
//
// A failure still ends the stream it happened in, so the point where
// Capture is applied decides what survives. CaptureMap and CaptureConcat
// capture every item on its own:
//
//	results := gresult.CaptureMap(orders, parsePrice)
//	prices, rejected := gresult.Split(results)
//
// Streams are cold and Subscribe blocks until the stream terminates or
// its context is cancelled. Cancellation is never reported as a failure.
package gresult
