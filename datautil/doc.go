// Package datautil provides small utilities shared across dataset
// tooling: human-readable byte sizes and their inverse parser, a free
// disk space probe, key-aligned iteration over several maps, pattern
// based field extraction, and a write-once map.
package datautil
