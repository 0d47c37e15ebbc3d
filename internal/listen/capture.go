package listen

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

// CaptureConfig describes the PCM format requested from the microphone.
type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

// Microphone opens capture devices.
type Microphone interface {
	Open(cfg CaptureConfig, onData func(pcm []byte)) (Device, error)
}

// Device is an opened capture device.
type Device interface {
	Start() error
	Stop() error
	Close()
}

// MalgoMicrophone captures from the default input device with miniaudio.
// The malgo context is created on first use.
type MalgoMicrophone struct {
	once sync.Once
	ctx  *malgo.AllocatedContext
	err  error
}

var _ Microphone = (*MalgoMicrophone)(nil)

// Open implements Microphone. onData receives s16le frames and must not
// retain the slice.
func (m *MalgoMicrophone) Open(cfg CaptureConfig, onData func(pcm []byte)) (Device, error) {
	m.once.Do(func() {
		m.ctx, m.err = malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	})
	if m.err != nil {
		return nil, fmt.Errorf("audio context: %w", m.err)
	}

	dc := malgo.DefaultDeviceConfig(malgo.Capture)
	dc.Capture.Format = malgo.FormatS16
	dc.Capture.Channels = cfg.Channels
	dc.SampleRate = cfg.SampleRate

	dev, err := malgo.InitDevice(m.ctx.Context, dc, malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			onData(input)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("capture device: %w", err)
	}
	return &malgoDevice{dev: dev}, nil
}

// Close releases the malgo context.
func (m *MalgoMicrophone) Close() {
	if m.ctx != nil {
		_ = m.ctx.Uninit()
		m.ctx.Free()
	}
}

type malgoDevice struct {
	dev *malgo.Device
}

func (d *malgoDevice) Start() error { return d.dev.Start() }
func (d *malgoDevice) Stop() error  { return d.dev.Stop() }
func (d *malgoDevice) Close()       { d.dev.Uninit() }
