// Command lpfilter-live runs the resonant low-pass filter on live audio.
//
// The default input is routed through the filter to the default output.
// Cutoff and resonance are controlled over a websocket (see package
// remote for the protocol) and, with -midi, from CC 74 and CC 71 of a MIDI
// input. With -noise the input is replaced by internal white noise, which
// makes filter sweeps easy to hear without a source.
//
// Usage:
//
//	lpfilter-live [flags]
//
// Examples:
//
//	lpfilter-live -channels 2 -rate 48000 -frames 256
//	lpfilter-live -noise -midi
//	lpfilter-live -addr :8090 -cutoff 800 -resonance 3
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/cwbudde/algo-iirfilter/dsp/core"
	"github.com/cwbudde/algo-iirfilter/dsp/filter/lowpass"
	"github.com/cwbudde/algo-iirfilter/dsp/param"
	"github.com/cwbudde/algo-iirfilter/internal/control/midi"
	"github.com/cwbudde/algo-iirfilter/internal/control/remote"
)

type liveConfig struct {
	channels   int
	rate       float64
	frames     int
	addr       string
	noise      bool
	useMIDI    bool
	midiDevice int
	midiChan   int
	cutoff     float64
	resonance  float64
}

func main() {
	var cfg liveConfig

	flag.IntVar(&cfg.channels, "channels", 2, "audio channels (1 or 2)")
	flag.Float64Var(&cfg.rate, "rate", 48000, "sample rate in Hz")
	flag.IntVar(&cfg.frames, "frames", 256, "frames per buffer")
	flag.StringVar(&cfg.addr, "addr", "localhost:8090", "websocket control address (empty disables)")
	flag.BoolVar(&cfg.noise, "noise", false, "filter internal white noise instead of the audio input")
	flag.BoolVar(&cfg.useMIDI, "midi", false, "listen for MIDI control changes")
	flag.IntVar(&cfg.midiDevice, "midi-device", -1, "MIDI input device id (-1 = default)")
	flag.IntVar(&cfg.midiChan, "midi-channel", 0, "MIDI channel 1..16 (0 = all)")
	flag.Float64Var(&cfg.cutoff, "cutoff", 440, "initial cutoff in Hz")
	flag.Float64Var(&cfg.resonance, "resonance", 1, "initial resonance Q")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lpfilter-live [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Runs the resonant low-pass filter on live audio.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := log.New(os.Stderr, "lpfilter-live: ", log.LstdFlags)

	if err := run(cfg, logger); err != nil {
		logger.Printf("error: %v", err)
		os.Exit(1)
	}
}

func run(cfg liveConfig, logger *log.Logger) error {
	if cfg.channels != 1 && cfg.channels != 2 {
		return fmt.Errorf("channels must be 1 or 2: %d", cfg.channels)
	}

	store := param.NewDefaultStore()
	if err := store.Set(param.CutoffID, cfg.cutoff); err != nil {
		return err
	}

	if err := store.Set(param.ResonanceID, cfg.resonance); err != nil {
		return err
	}

	eng, err := lowpass.New(store, lowpass.WithDenormalFlush(true))
	if err != nil {
		return err
	}

	stream := core.ApplyProcessorOptions(
		core.WithSampleRate(cfg.rate),
		core.WithBlockSize(cfg.frames),
		core.WithNumChannels(cfg.channels),
	)

	if err := eng.PrepareConfig(stream); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		broadcast func()
		serveErr  <-chan error
	)

	if cfg.addr != "" {
		ln, err := net.Listen("tcp", cfg.addr)
		if err != nil {
			return fmt.Errorf("control surface: %w", err)
		}

		ctrl, err := startControl(ln, store, logger)
		if err != nil {
			_ = ln.Close()
			return err
		}
		defer ctrl.close()

		broadcast = ctrl.srv.Broadcast
		serveErr = ctrl.errc
	}

	if cfg.useMIDI {
		stop, err := startMIDI(ctx, cfg, store, broadcast, logger)
		if err != nil {
			return err
		}
		defer stop()
	}

	proc := &processor{eng: eng, rng: 0x9E3779B97F4A7C15}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	defer portaudio.Terminate()

	audio, err := openStream(cfg, proc)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer audio.Close()

	if err := audio.Start(); err != nil {
		return fmt.Errorf("start stream: %w", err)
	}

	logger.Printf("running: %d channel(s) at %g Hz, %d frames per buffer", cfg.channels, cfg.rate, cfg.frames)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error

	select {
	case sig := <-sigCh:
		logger.Printf("received %v, shutting down", sig)
	case err := <-serveErr:
		runErr = fmt.Errorf("control surface: %w", err)
	}

	if err := audio.Stop(); err != nil {
		logger.Printf("stop stream: %v", err)
	}

	if n := proc.errors.Load(); n > 0 {
		logger.Printf("%d callback(s) failed", n)
	}

	return runErr
}

// controlSurface serves the websocket control surface. A serve failure is
// delivered once on errc.
type controlSurface struct {
	srv  *remote.Server
	http *http.Server
	errc chan error
}

func startControl(ln net.Listener, store *param.Store, logger *log.Logger) (*controlSurface, error) {
	srv, err := remote.New(store, remote.WithLogger(log.New(os.Stderr, "remote: ", log.LstdFlags)))
	if err != nil {
		return nil, err
	}

	c := &controlSurface{
		srv: srv,
		http: &http.Server{
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		errc: make(chan error, 1),
	}

	logger.Printf("control surface on ws://%s/ws", ln.Addr())

	go func() {
		if err := c.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.errc <- err
		}
	}()

	return c, nil
}

func (c *controlSurface) close() {
	c.srv.Close()
	_ = c.http.Close()
}

func startMIDI(ctx context.Context, cfg liveConfig, store *param.Store, broadcast func(), logger *log.Logger) (func(), error) {
	opts := []midi.Option{midi.WithChangeHook(broadcast)}
	if cfg.midiChan != 0 {
		opts = append(opts, midi.WithChannel(cfg.midiChan))
	}

	ctrl, err := midi.NewController(store, opts...)
	if err != nil {
		return nil, err
	}

	in, err := midi.OpenInput(cfg.midiDevice)
	if err != nil {
		return nil, err
	}

	midiCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)

		err := midi.Serve(midiCtx, in.Events(), ctrl, func(err error) {
			logger.Printf("midi: %v", err)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("midi: %v", err)
		}
	}()

	logger.Printf("listening for MIDI CC %d (cutoff) and CC %d (resonance)", midi.CCBrightness, midi.CCTimbre)

	return func() {
		cancel()
		<-done

		if err := in.Close(); err != nil {
			logger.Printf("midi close: %v", err)
		}
	}, nil
}

func openStream(cfg liveConfig, proc *processor) (*portaudio.Stream, error) {
	outDev, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, err
	}

	if cfg.noise {
		p := portaudio.LowLatencyParameters(nil, outDev)
		p.Input.Channels = 0
		p.Output.Channels = cfg.channels
		p.SampleRate = cfg.rate
		p.FramesPerBuffer = cfg.frames

		return portaudio.OpenStream(p, proc.generate)
	}

	inDev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, err
	}

	p := portaudio.LowLatencyParameters(inDev, outDev)
	p.Input.Channels = cfg.channels
	p.Output.Channels = cfg.channels
	p.SampleRate = cfg.rate
	p.FramesPerBuffer = cfg.frames

	return portaudio.OpenStream(p, proc.duplex)
}

// processor owns the engine on the audio thread.
type processor struct {
	eng    *lowpass.Engine
	rng    uint64
	errors atomic.Int64
}

// duplex filters the input into the output.
func (p *processor) duplex(in, out [][]float32) {
	for ch := range out {
		if ch < len(in) {
			copy(out[ch], in[ch])
		} else {
			clear(out[ch])
		}
	}

	p.process(out)
}

// generate filters white noise at -12 dBFS.
func (p *processor) generate(out [][]float32) {
	for ch := range out {
		for i := range out[ch] {
			p.rng ^= p.rng << 13
			p.rng ^= p.rng >> 7
			p.rng ^= p.rng << 17
			out[ch][i] = 0.25 * (float32(p.rng>>40)/(1<<24)*2 - 1)
		}
	}

	p.process(out)
}

func (p *processor) process(out [][]float32) {
	if len(out) == 0 {
		return
	}

	if err := p.eng.ProcessFloat32(out, len(out[0])); err != nil {
		p.errors.Add(1)
	}
}
