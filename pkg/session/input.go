package session

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/teslashibe/go-capture/pkg/device"
)

// DeviceInput wraps an opened video device as an attachable input.
// Closing the input closes the underlying device handle.
type DeviceInput struct {
	id  string
	dev device.Device
}

// NewDeviceInput creates an input over an opened device handle.
func NewDeviceInput(dev device.Device) *DeviceInput {
	return &DeviceInput{
		id:  uuid.New().String(),
		dev: dev,
	}
}

func (i *DeviceInput) ID() string        { return i.id }
func (i *DeviceInput) Kind() device.Kind { return device.KindVideo }

func (i *DeviceInput) Label() string {
	return fmt.Sprintf("video input (%s)", i.dev.Info().Name)
}

// Device returns the underlying device handle.
func (i *DeviceInput) Device() device.Device { return i.dev }

// Close releases the underlying device handle.
func (i *DeviceInput) Close() error { return i.dev.Close() }

// AudioInput wraps an audio device as an attachable input. Audio devices need
// no exclusive handle of their own; the info is enough to attach.
type AudioInput struct {
	id   string
	info device.Info
}

// NewAudioInput creates an audio input for the given device.
func NewAudioInput(info device.Info) *AudioInput {
	return &AudioInput{
		id:   uuid.New().String(),
		info: info,
	}
}

func (i *AudioInput) ID() string        { return i.id }
func (i *AudioInput) Kind() device.Kind { return device.KindAudio }

func (i *AudioInput) Label() string {
	return fmt.Sprintf("audio input (%s)", i.info.Name)
}

// Info returns the wrapped device info.
func (i *AudioInput) Info() device.Info { return i.info }
