// Package listen implements speech recognition for talkbox: microphone
// audio captured with malgo is streamed to Deepgram over a websocket and
// transcripts come back as speech events.
package listen
