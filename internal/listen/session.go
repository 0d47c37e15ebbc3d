package listen

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

const (
	chunkDuration = 100 * time.Millisecond
	drainTimeout  = 2 * time.Second
)

// session is one recognition handle. It can be started again after it has
// ended.
type session struct {
	r          *Recognizer
	stream     StreamConfig
	continuous bool

	mu   sync.Mutex
	run  *run
	runs uint64
}

// run is a single start-to-end cycle of a session.
type run struct {
	seq      uint64
	stop     chan struct{}
	stopOnce sync.Once
}

func (r *run) requestStop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Start begins capturing and streaming. It returns immediately; connection
// and capture failures are reported as speech.RecognitionError followed by
// speech.RecognitionEnded.
func (s *session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != nil {
		return speech.ErrAlreadyStarted
	}
	if err := s.r.root.Err(); err != nil {
		return err
	}

	s.runs++
	rn := &run{seq: s.runs, stop: make(chan struct{})}
	s.run = rn
	s.r.wg.Add(1)
	go s.loop(s.r.root, rn)
	return nil
}

// Stop asks the service for the remaining results and ends the session.
// speech.RecognitionEnded is emitted once it has ended.
func (s *session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run == nil {
		return speech.ErrNotStarted
	}
	s.run.requestStop()
	return nil
}

func (s *session) loop(ctx context.Context, rn *run) {
	defer s.r.wg.Done()
	defer s.end(rn)

	stream, err := s.r.transport.Dial(ctx, s.stream)
	if err != nil {
		s.fail(ctx, speech.CodeNetwork, err)
		return
	}
	defer func() {
		if err := stream.Close(); err != nil {
			log.Debug("Recognition stream close", "error", err)
		}
	}()

	audio := make(chan []byte, 64)
	dev, err := s.r.mic.Open(CaptureConfig{
		SampleRate: uint32(s.stream.SampleRate), //nolint:gosec
		Channels:   uint32(s.stream.Channels),   //nolint:gosec
	}, func(pcm []byte) {
		buf := append([]byte(nil), pcm...)
		select {
		case audio <- buf:
		default:
		}
	})
	if err != nil {
		s.fail(ctx, speech.CodeAudioCapture, err)
		return
	}
	defer dev.Close()
	if err := dev.Start(); err != nil {
		s.fail(ctx, speech.CodeAudioCapture, err)
		return
	}

	recvDone := make(chan error, 1)
	go func() { recvDone <- s.receive(ctx, stream, rn) }()

	chunk := s.stream.SampleRate * s.stream.Channels * 2 * int(chunkDuration/time.Millisecond) / 1000
	var pending []byte

	for {
		select {
		case pcm := <-audio:
			pending = append(pending, pcm...)
			if len(pending) < chunk {
				continue
			}
			if err := stream.Send(ctx, pending); err != nil {
				_ = dev.Stop()
				s.fail(ctx, speech.CodeNetwork, err)
				return
			}
			pending = nil

		case err := <-recvDone:
			_ = dev.Stop()
			switch {
			case ctx.Err() != nil:
				s.fail(ctx, speech.CodeAborted, ctx.Err())
			case err != nil:
				s.fail(ctx, speech.CodeNetwork, err)
			}
			return

		case <-rn.stop:
			_ = dev.Stop()
			if len(pending) > 0 {
				_ = stream.Send(ctx, pending)
			}
			if err := stream.Finalize(ctx); err != nil {
				log.Debug("Recognition finalize", "error", err)
			}
			if err := stream.CloseStream(ctx); err != nil {
				log.Debug("Recognition close stream", "error", err)
			}
			select {
			case err := <-recvDone:
				if err != nil {
					s.fail(ctx, speech.CodeNetwork, err)
				}
			case <-time.After(drainTimeout):
				log.Debug("Recognition drain timed out")
			case <-ctx.Done():
			}
			return

		case <-ctx.Done():
			_ = dev.Stop()
			s.fail(ctx, speech.CodeAborted, ctx.Err())
			return
		}
	}
}

// receive forwards transcripts until the stream ends. A non-continuous
// session stops after its first final result.
func (s *session) receive(ctx context.Context, stream Stream, rn *run) error {
	for {
		u, err := stream.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if u.Text == "" || (!u.IsFinal && !s.stream.InterimResults) {
			continue
		}
		s.emit(speech.RecognitionResult{Final: u.IsFinal, Text: u.Text})

		if u.IsFinal && !s.continuous {
			rn.requestStop()
		}
	}
}

func (s *session) fail(ctx context.Context, code speech.ErrorCode, err error) {
	if c := speech.CodeOf(err); c != "" {
		code = c
	}
	if ctx.Err() != nil && code != speech.CodeAborted {
		code = speech.CodeAborted
	}
	s.emit(speech.RecognitionError{Code: string(code), Err: err})
}

func (s *session) end(rn *run) {
	s.mu.Lock()
	if s.run == rn {
		s.run = nil
	}
	s.mu.Unlock()

	s.emit(speech.RecognitionEnded{Run: rn.seq})
}

func (s *session) emit(ev speech.Event) {
	if s.r.emitter != nil {
		s.r.emitter.Emit(ev)
	}
}
