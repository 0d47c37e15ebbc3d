package listen

import (
	"errors"
	"testing"
	"time"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

func newTestRecognizer(t *testing.T) (*Recognizer, *fakeMic, *fakeTransport, *recorder) {
	t.Helper()
	mic := newFakeMic()
	transport := newFakeTransport()
	rec := newRecorder()
	r := NewRecognizer(Config{Model: "nova-3"}, mic, transport, rec)
	t.Cleanup(r.Close)
	return r, mic, transport, rec
}

func newTestSession(t *testing.T, r *Recognizer, cfg speech.SessionConfig) speech.Session {
	t.Helper()
	s, err := r.NewSession(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

var continuous = speech.SessionConfig{Language: "en-US", InterimResults: true, Continuous: true}

func TestSessionResults(t *testing.T) {
	r, _, transport, rec := newTestRecognizer(t)
	s := newTestSession(t, r, continuous)

	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	stream := transport.stream(t)
	stream.updates <- Update{Text: "hel"}
	stream.updates <- Update{Text: "hello", IsFinal: true}

	if ev := rec.next(t); ev != (speech.RecognitionResult{Text: "hel"}) {
		t.Errorf("event = %#v", ev)
	}
	if ev := rec.next(t); ev != (speech.RecognitionResult{Final: true, Text: "hello"}) {
		t.Errorf("event = %#v", ev)
	}

	if err := s.Stop(); err != nil {
		t.Fatal(err)
	}
	if ev := rec.next(t); ev != (speech.RecognitionEnded{Run: 1}) {
		t.Errorf("event = %#v", ev)
	}
	if !stream.Finalized() {
		t.Error("stop should finalize the stream")
	}

	cfg := transport.configs[0]
	if cfg.Language != "en-US" || cfg.Model != "nova-3" || cfg.SampleRate != 16000 || cfg.Channels != 1 || !cfg.InterimResults {
		t.Errorf("stream config = %+v", cfg)
	}
}

func TestSessionDropsInterimWhenDisabled(t *testing.T) {
	r, _, transport, rec := newTestRecognizer(t)
	s := newTestSession(t, r, speech.SessionConfig{Continuous: true})

	_ = s.Start()
	stream := transport.stream(t)
	stream.updates <- Update{Text: "hel"}
	stream.updates <- Update{Text: ""}
	stream.updates <- Update{Text: "hello", IsFinal: true}

	if ev := rec.next(t); ev != (speech.RecognitionResult{Final: true, Text: "hello"}) {
		t.Errorf("event = %#v", ev)
	}
	_ = s.Stop()
	rec.next(t)
}

func TestSessionSingleShotEndsAfterFinal(t *testing.T) {
	r, _, transport, rec := newTestRecognizer(t)
	s := newTestSession(t, r, speech.SessionConfig{InterimResults: true})

	_ = s.Start()
	stream := transport.stream(t)
	stream.updates <- Update{Text: "done", IsFinal: true}

	rec.next(t)
	if ev := rec.next(t); ev != (speech.RecognitionEnded{Run: 1}) {
		t.Errorf("event = %#v", ev)
	}
}

func TestSessionLifecycleErrors(t *testing.T) {
	r, _, transport, rec := newTestRecognizer(t)
	s := newTestSession(t, r, continuous)

	if err := s.Stop(); !errors.Is(err, speech.ErrNotStarted) {
		t.Errorf("Stop before Start = %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	if err := s.Start(); !errors.Is(err, speech.ErrAlreadyStarted) {
		t.Errorf("second Start = %v", err)
	}
	transport.stream(t)

	_ = s.Stop()
	if ev := rec.next(t); ev != (speech.RecognitionEnded{Run: 1}) {
		t.Fatalf("event = %#v", ev)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	transport.stream(t)
	_ = s.Stop()
	if ev := rec.next(t); ev != (speech.RecognitionEnded{Run: 2}) {
		t.Fatalf("event = %#v", ev)
	}
}

func TestSessionErrorCodes(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*fakeMic, *fakeTransport)
		code  speech.ErrorCode
	}{
		{
			name:  "dial failure",
			setup: func(_ *fakeMic, tr *fakeTransport) { tr.err = errBoom },
			code:  speech.CodeNetwork,
		},
		{
			name: "rejected key",
			setup: func(_ *fakeMic, tr *fakeTransport) {
				tr.err = speech.NewError(speech.CodeNotAllowed, "rejected", errBoom)
			},
			code: speech.CodeNotAllowed,
		},
		{
			name:  "no microphone",
			setup: func(m *fakeMic, _ *fakeTransport) { m.openErr = errBoom },
			code:  speech.CodeAudioCapture,
		},
		{
			name:  "capture start",
			setup: func(m *fakeMic, _ *fakeTransport) { m.startErr = errBoom },
			code:  speech.CodeAudioCapture,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mic, transport, rec := newTestRecognizer(t)
			tt.setup(mic, transport)
			s := newTestSession(t, r, continuous)

			if err := s.Start(); err != nil {
				t.Fatal(err)
			}

			ev, ok := rec.next(t).(speech.RecognitionError)
			if !ok || ev.Code != string(tt.code) || !errors.Is(ev.Err, errBoom) {
				t.Errorf("error event = %#v", ev)
			}
			if ev := rec.next(t); ev != (speech.RecognitionEnded{Run: 1}) {
				t.Errorf("event = %#v", ev)
			}
		})
	}
}

func TestSessionStreamsAudioInChunks(t *testing.T) {
	r, mic, transport, rec := newTestRecognizer(t)
	s := newTestSession(t, r, continuous)

	_ = s.Start()
	stream := transport.stream(t)

	// 50ms each of 16 kHz mono s16le
	mic.waitOpened(t)
	mic.feed(make([]byte, 1600))
	mic.feed(make([]byte, 1600))

	deadline := time.Now().Add(2 * time.Second)
	for len(stream.Sent()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	_ = s.Stop()
	rec.next(t)

	sent := stream.Sent()
	if len(sent) != 1 || len(sent[0]) != 3200 {
		t.Errorf("sent %d chunks, want one of 3200 bytes", len(sent))
	}
}

func TestRecognizerCloseAborts(t *testing.T) {
	r, _, transport, rec := newTestRecognizer(t)
	s := newTestSession(t, r, continuous)

	_ = s.Start()
	transport.stream(t)
	r.Close()

	ev, ok := rec.next(t).(speech.RecognitionError)
	if !ok || ev.Code != string(speech.CodeAborted) {
		t.Errorf("event = %#v", ev)
	}
	if ev := rec.next(t); ev != (speech.RecognitionEnded{Run: 1}) {
		t.Errorf("event = %#v", ev)
	}
	if err := s.Start(); err == nil {
		t.Error("start after close should fail")
	}
}

func TestDetect(t *testing.T) {
	if Detect("").Recognition {
		t.Error("no key, no recognition")
	}
	if !Detect("key").Recognition {
		t.Error("key present, recognition expected")
	}
}
