// Package audio provides cross-platform PCM playback using the oto/v3
// library, plus a mock player for tests.
package audio
