package midi

import (
	"context"
	"fmt"

	"github.com/rakyll/portmidi"
)

// Input is an open portmidi input device.
type Input struct {
	stream *portmidi.Stream
	events <-chan portmidi.Event
}

// OpenInput initializes portmidi and opens device. A negative device
// selects the system default input.
func OpenInput(device int) (*Input, error) {
	if err := portmidi.Initialize(); err != nil {
		return nil, fmt.Errorf("midi: initialize: %w", err)
	}

	id := portmidi.DeviceID(device)
	if device < 0 {
		id = portmidi.DefaultInputDeviceID()
	}

	if info := portmidi.Info(id); info == nil || !info.IsInputAvailable {
		_ = portmidi.Terminate()
		return nil, fmt.Errorf("midi: device %d is not an input", id)
	}

	stream, err := portmidi.NewInputStream(id, 1024)
	if err != nil {
		_ = portmidi.Terminate()
		return nil, fmt.Errorf("midi: open device %d: %w", id, err)
	}

	return &Input{stream: stream, events: stream.Listen()}, nil
}

// Events returns the incoming message channel.
func (in *Input) Events() <-chan portmidi.Event { return in.events }

// Close closes the stream and shuts portmidi down.
func (in *Input) Close() error {
	err := in.stream.Close()
	if terr := portmidi.Terminate(); err == nil {
		err = terr
	}

	return err
}

// Serve applies events to c until ctx is done or events is closed. Errors
// from individual messages go to onError when it is non-nil.
func Serve(ctx context.Context, events <-chan portmidi.Event, c *Controller, onError func(error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}

			if _, err := c.Handle(ev.Status, ev.Data1, ev.Data2); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
