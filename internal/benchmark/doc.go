// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// They cover the hot paths of a whitelist run on a synthetic repository:
//   - manifest discovery and decoding
//   - closure resolution
//   - whitelist reconciliation and auto-install propagation
//   - ignore fragment rendering
//
// To generate a PGO profile, run:
//
//	go test -run '^$' -bench . -cpuprofile default.pgo ./internal/benchmark
package benchmark
