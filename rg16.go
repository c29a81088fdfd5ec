// Package rg16 decodes Fairfield Nodal Receiver Gather Format v1.6-1
// ("RG16") seismic data files into a slice of waveform traces.
package rg16

import (
	"io"
	"time"

	"github.com/fairfield-nodal/rg16/errs"
	"github.com/fairfield-nodal/rg16/field"
	"github.com/fairfield-nodal/rg16/header"
	"github.com/fairfield-nodal/rg16/internal/options"
	"github.com/fairfield-nodal/rg16/merge"
	"github.com/fairfield-nodal/rg16/trace"
)

const (
	wantSampleFormatCode = 8058
	wantManufacturerCode = 20
	wantVersionNumber    = 262
)

// IsRG16 reports whether source begins with a recognizable RG16 general
// header. It never returns an error: a truncated or unreadable source is
// treated as "not RG16" rather than a failure.
func IsRG16(source io.ReaderAt) bool {
	sampleFormat, err := field.ReadBCD(source, 2, field.BCDWhole(2), true)
	if err != nil {
		return false
	}

	manufacturer, err := field.ReadBCD(source, 16, field.BCDWhole(1), true)
	if err != nil {
		return false
	}

	version, err := field.ReadBinary(source, 42, 2)
	if err != nil {
		return false
	}

	return sampleFormat == wantSampleFormatCode &&
		manufacturer == wantManufacturerCode &&
		version == wantVersionNumber
}

// ReadInitialHeaders decodes and validates the general/channel-set/extended
// header block at the start of source, failing with *errs.NotRG16Error if
// the identifying fields don't match RG16 v1.6-1.
func ReadInitialHeaders(source io.ReaderAt) (header.Initial, error) {
	initial, err := header.ReadInitial(source)
	if err != nil {
		return header.Initial{}, err
	}

	g1, g2 := initial.General1, initial.General2
	if g1.SampleFormatCode != wantSampleFormatCode ||
		g1.ManufacturerCode != wantManufacturerCode ||
		g2.VersionNumber != wantVersionNumber {
		return header.Initial{}, &errs.NotRG16Error{
			DetectedVersion:      g2.VersionNumber,
			DetectedManufacturer: g1.ManufacturerCode,
			DetectedSampleFormat: g1.SampleFormatCode,
		}
	}

	return initial, nil
}

// decodeConfig holds the resolved state of every Option.
type decodeConfig struct {
	headOnly      bool
	contactsNorth bool
	details       bool
	merge         bool
	startTime     time.Time
	endTime       time.Time
	hasStartTime  bool
	hasEndTime    bool
	nowFunc       func() time.Time
}

// Option configures a call to Decode.
type Option = options.Option[*decodeConfig]

// WithHeadOnly skips reading sample data; Trace.Data is left empty but
// Stats (including Npts) is still populated.
func WithHeadOnly() Option {
	return options.NoError(func(c *decodeConfig) { c.headOnly = true })
}

// WithContactsNorth remaps component codes 2/3/4 to Z/N/E and negates Z
// samples, matching a receiver deployed with its vertical axis reversed.
func WithContactsNorth() Option {
	return options.NoError(func(c *decodeConfig) { c.contactsNorth = true })
}

// WithDetails attaches the full decoded header state to each trace's Stats.
func WithDetails() Option {
	return options.NoError(func(c *decodeConfig) { c.details = true })
}

// WithMerge concatenates adjacent trace blocks belonging to the same
// channel after decoding.
func WithMerge() Option {
	return options.NoError(func(c *decodeConfig) { c.merge = true })
}

// WithStartTime sets the inclusive lower bound of the decode window.
// Default: the Unix epoch.
func WithStartTime(t time.Time) Option {
	return options.NoError(func(c *decodeConfig) {
		c.startTime = t
		c.hasStartTime = true
	})
}

// WithEndTime sets the exclusive upper bound of the decode window.
// Default: the current time, as reported by the config's nowFunc.
func WithEndTime(t time.Time) Option {
	return options.NoError(func(c *decodeConfig) {
		c.endTime = t
		c.hasEndTime = true
	})
}

// withNowFunc overrides the clock used to resolve the default end time.
// Unexported: it exists so tests can pin "now" without depending on wall
// time, not as part of the public decode-configuration surface.
func withNowFunc(fn func() time.Time) Option {
	return options.NoError(func(c *decodeConfig) { c.nowFunc = fn })
}

func newDecodeConfig(opts ...Option) (*decodeConfig, error) {
	cfg := &decodeConfig{nowFunc: time.Now}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	if !cfg.hasStartTime {
		cfg.startTime = time.Unix(0, 0).UTC()
	}
	if !cfg.hasEndTime {
		cfg.endTime = cfg.nowFunc()
	}

	return cfg, nil
}

// Decode walks every trace block in source and returns the kept traces in
// file order (or, with WithMerge, grouped and concatenated by channel).
func Decode(source io.ReaderAt, opts ...Option) ([]trace.Trace, error) {
	cfg, err := newDecodeConfig(opts...)
	if err != nil {
		return nil, err
	}

	initial, err := ReadInitialHeaders(source)
	if err != nil {
		return nil, err
	}

	nbrRecords := countRecords(initial)

	samplingRate := trace.SamplingRateFromBaseScanInterval(initial.General1.BaseScanInterval)

	pos := initial.TraceBlockStart()
	traces := make([]trace.Trace, 0, nbrRecords)

	for i := 0; i < nbrRecords; i++ {
		nbrTraceExtensionBlocks, err := field.ReadBinary(source, pos+9, 1)
		if err != nil {
			return nil, err
		}

		if nbrTraceExtensionBlocks > 10 {
			return nil, &errs.UnknownTraceExtensionBlockError{Index: int(nbrTraceExtensionBlocks)}
		}

		npts, err := field.ReadBinary(source, pos+27, 3)
		if err != nil {
			return nil, err
		}

		blockLen := int64(20) + 32*int64(nbrTraceExtensionBlocks) + 4*int64(npts)

		startMicros, err := field.ReadBinary(source, pos+20+64, 8)
		if err != nil {
			return nil, err
		}

		startTimeBlock := time.UnixMicro(int64(startMicros)).UTC()

		if !startTimeBlock.Before(cfg.startTime) && startTimeBlock.Before(cfg.endTime) {
			t, err := trace.DecodeOne(source, pos, trace.Params{
				HeadOnly:      cfg.headOnly,
				ContactsNorth: cfg.contactsNorth,
				Details:       cfg.details,
				SamplingRate:  samplingRate,
				Initial:       initial,
			})
			if err != nil {
				return nil, err
			}

			traces = append(traces, t)
		}

		pos += blockLen
	}

	if cfg.merge {
		return merge.Stream(traces)
	}

	return traces, nil
}

// countRecords derives the number of trace blocks in the file: the number
// of time slices (extended header 2) times the number of distinct
// receiver-unit channels declared across the channel-set descriptors.
func countRecords(initial header.Initial) int {
	channels := make(map[uint64]struct{})
	for _, cs := range initial.ChannelSets {
		channels[cs.RUChannelNumber] = struct{}{}
	}

	nbrTimeSlices := initial.ExtendedHeaders.Header2.NbrTimeSlices

	return int(nbrTimeSlices) * len(channels)
}
