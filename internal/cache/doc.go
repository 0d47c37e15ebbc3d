// Package cache stores synthesized audio so repeated utterances skip the
// backend. An in-memory LRU sits in front of a zstd-compressed disk store
// whose index survives restarts.
package cache
