package listen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nhooyr.io/websocket"

	"github.com/dgnsrekt/talkbox/internal/speech"
)

// DefaultEndpoint is Deepgram's streaming endpoint.
const DefaultEndpoint = "wss://api.deepgram.com/v1/listen"

// StreamConfig configures one streaming connection.
type StreamConfig struct {
	Language       string
	Model          string
	SampleRate     int
	Channels       int
	InterimResults bool
}

// Update is one transcript received from the stream.
type Update struct {
	Text        string
	IsFinal     bool
	SpeechFinal bool
}

// Transport opens streaming recognition connections.
type Transport interface {
	Dial(ctx context.Context, cfg StreamConfig) (Stream, error)
}

// Stream is a live recognition connection. Recv returns io.EOF once the
// server closes the stream normally.
type Stream interface {
	Send(ctx context.Context, pcm []byte) error
	Finalize(ctx context.Context) error
	CloseStream(ctx context.Context) error
	Recv(ctx context.Context) (Update, error)
	Close() error
}

// Deepgram is a Transport for Deepgram's live transcription API.
type Deepgram struct {
	apiKey   string
	endpoint string
}

var _ Transport = (*Deepgram)(nil)

// NewDeepgram creates a Deepgram transport. An empty endpoint uses
// DefaultEndpoint.
func NewDeepgram(apiKey, endpoint string) *Deepgram {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Deepgram{apiKey: apiKey, endpoint: endpoint}
}

// Dial implements Transport.
func (d *Deepgram) Dial(ctx context.Context, cfg StreamConfig) (Stream, error) {
	u, err := url.Parse(d.endpoint)
	if err != nil {
		return nil, err
	}

	model := cfg.Model
	if model == "" {
		model = "nova-3"
	}
	q := u.Query()
	q.Set("model", model)
	q.Set("encoding", "linear16")
	q.Set("punctuate", "true")
	q.Set("interim_results", strconv.FormatBool(cfg.InterimResults))
	if cfg.SampleRate > 0 {
		q.Set("sample_rate", strconv.Itoa(cfg.SampleRate))
	}
	if cfg.Channels > 0 {
		q.Set("channels", strconv.Itoa(cfg.Channels))
	}
	if cfg.Language != "" {
		q.Set("language", cfg.Language)
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Authorization", "Token "+d.apiKey)

	conn, resp, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, speech.NewError(speech.CodeNotAllowed, "deepgram rejected the API key", err)
		}
		return nil, speech.NewError(speech.CodeNetwork, "dial deepgram", err)
	}
	return &deepgramStream{conn: conn}, nil
}

type deepgramResponse struct {
	Type        string `json:"type"`
	IsFinal     bool   `json:"is_final"`
	SpeechFinal bool   `json:"speech_final"`
	Channel     struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
}

type deepgramStream struct {
	conn *websocket.Conn
}

func (s *deepgramStream) Send(ctx context.Context, pcm []byte) error {
	return s.conn.Write(ctx, websocket.MessageBinary, pcm)
}

func (s *deepgramStream) Finalize(ctx context.Context) error {
	return s.conn.Write(ctx, websocket.MessageText, []byte(`{"type":"Finalize"}`))
}

func (s *deepgramStream) CloseStream(ctx context.Context) error {
	return s.conn.Write(ctx, websocket.MessageText, []byte(`{"type":"CloseStream"}`))
}

// Recv skips metadata messages and returns the next transcript.
func (s *deepgramStream) Recv(ctx context.Context) (Update, error) {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return Update{}, io.EOF
			}
			return Update{}, err
		}

		var resp deepgramResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			return Update{}, fmt.Errorf("decode deepgram message: %w", err)
		}
		if resp.Type != "Results" {
			continue
		}

		var text string
		if len(resp.Channel.Alternatives) > 0 {
			text = strings.TrimSpace(resp.Channel.Alternatives[0].Transcript)
		}
		return Update{Text: text, IsFinal: resp.IsFinal, SpeechFinal: resp.SpeechFinal}, nil
	}
}

func (s *deepgramStream) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "")
}
