package core

// ProcessorConfig describes the stream a processor is prepared for.
type ProcessorConfig struct {
	SampleRate  float64
	BlockSize   int
	NumChannels int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// defaultProcessorConfig is stereo 48 kHz with 512-sample blocks.
func defaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:  48000,
		BlockSize:   512,
		NumChannels: 2,
	}
}

// WithSampleRate sets the sample rate in Hz.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		cfg.SampleRate = sampleRate
	}
}

// WithBlockSize sets the largest block the host will pass.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		cfg.BlockSize = blockSize
	}
}

// WithNumChannels sets the channel count.
func WithNumChannels(numChannels int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		cfg.NumChannels = numChannels
	}
}

// ApplyProcessorOptions applies opts over the defaults. Values are taken as
// given; the processor's Prepare step validates them.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := defaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}
