// Package node implements the indicator's cooperative runtime: five
// time-sliced state machines (radio bring-up, boot LED self-test,
// command acknowledgment, pairing/discovery, sleep/wake duty cycling)
// advanced by a single tick function inside one execution context.
//
// Nothing in the package blocks except the deliberate low-power suspend
// performed by the sleep machine through the Sleeper port. The
// asynchronous receive handler runs on the link layer's context and is
// limited to depositing a bounded latest-wins event; the tick loop
// drains it at one defined point per iteration, so no other
// synchronization is needed between the two contexts.
//
// All timers compare against a wrapping millisecond clock; comparisons
// go through elapsed and reached, which are wrap-safe.
package node
