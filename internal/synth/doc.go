// Package synth implements speech synthesis for talkbox. Text is rendered to
// 16-bit mono PCM by a Backend (piper or gTTS), optionally pitch shifted
// with ffmpeg, cached, and played through an audio.Player.
package synth
