package synth

import (
	"context"
	"fmt"
	"math"
)

const (
	minPitch = 0.5
	maxPitch = 2.0
)

// pitchFilter returns the ffmpeg audio filter that shifts pitch by factor
// while keeping the duration: resample to change pitch, then atempo to
// restore the tempo.
func pitchFilter(factor float64) string {
	return fmt.Sprintf("asetrate=%d,aresample=%d,atempo=%.4f",
		int(math.Round(SampleRate*factor)), SampleRate, 1/factor)
}

func clampPitch(pitch float64) float64 {
	switch {
	case pitch <= 0:
		return 1
	case pitch < minPitch:
		return minPitch
	case pitch > maxPitch:
		return maxPitch
	}
	return pitch
}

// shiftPitch runs pcm through ffmpeg. A factor of 1 returns pcm unchanged.
func shiftPitch(ctx context.Context, run runFunc, ffmpeg string, pcm []byte, factor float64) ([]byte, error) {
	factor = clampPitch(factor)
	if factor == 1 {
		return pcm, nil
	}
	rate := fmt.Sprint(SampleRate)
	args := []string{
		"-f", "s16le", "-ar", rate, "-ac", "1", "-i", "pipe:0",
		"-filter:a", pitchFilter(factor),
		"-f", "s16le", "-ar", rate, "-ac", "1", "pipe:1",
	}
	return run(ctx, ffmpeg, args, pcm)
}
