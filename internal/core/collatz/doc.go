// Package collatz implements the reverse Collatz enumeration engine.
//
// Every odd m with 3m+1 = n*2^k is a predecessor of n. Starting from a seed
// (conventionally 1) the engine walks predecessors breadth-first under a
// bit-length ceiling, classifies each value into a domain.Tuple and counts
// tuples into a domain.FrequencyTable. Everything here is a pure function of
// its arguments; concurrency and persistence live in the dispatch and
// service packages.
//
// Values are *big.Int and are never mutated after being returned.
package collatz
