// Package trace decodes a single RG16 trace block: its 20-byte preamble, up
// to 10 optional 32-byte extension blocks, and its big-endian IEEE-754
// sample payload.
package trace

import (
	"io"
	"strconv"
	"time"

	"github.com/fairfield-nodal/rg16/errs"
	"github.com/fairfield-nodal/rg16/field"
	"github.com/fairfield-nodal/rg16/header"
)

// Stats is the metadata attached to a decoded Trace.
type Stats struct {
	Network      string
	Station      string
	Location     string
	Channel      string
	StartTime    time.Time
	EndTime      time.Time
	SamplingRate float64
	Npts         int
	RG16Details  *RG16Details
}

// ID returns the dotted network.station.location.channel identifier.
func (s Stats) ID() string {
	return s.Network + "." + s.Station + "." + s.Location + "." + s.Channel
}

// Trace is a decoded waveform: a contiguous run of samples plus its
// metadata. The decoder only ever constructs this as a plain struct
// literal — there's no separate constructor to satisfy.
type Trace struct {
	Data  []float32
	Stats Stats
}

// RG16Details carries the full decoded header state for a trace, attached
// only when details output is requested.
type RG16Details struct {
	InitialHeaders header.Initial
	TraceHeaders   map[string]any
}

var bandCodeBySamplingRate = map[float64]string{
	2000: "G",
	1000: "G",
	500:  "D",
	250:  "D",
}

var standardComponentNames = map[uint64]string{
	2: "Z",
	3: "N",
	4: "E",
}

const instrumentCode = "P"

// SamplingRateFromBaseScanInterval derives the sampling rate in Hz from the
// base_scan_interval field carried in general header 1.
func SamplingRateFromBaseScanInterval(baseScanInterval uint64) float64 {
	return 1000 / (float64(baseScanInterval) / 16)
}

// Params bundles the per-decode options DecodeOne needs, mirroring the
// functional options resolved by the caller in package rg16.
type Params struct {
	HeadOnly      bool
	ContactsNorth bool
	Details       bool
	SamplingRate  float64
	Initial       header.Initial
}

// DecodeOne decodes the trace block starting at the absolute byte offset
// pos.
func DecodeOne(source io.ReaderAt, pos int64, p Params) (Trace, error) {
	r := &fieldReader{source: source}

	nbrTraceExtensionBlocks := r.binary(pos+9, 1)
	componentCode := r.binary(pos+40, 1)
	npts := r.binary(pos+27, 3)
	startTimeMicros := r.binary(pos+20+64, 8)
	network := r.binary(pos+20, 3)
	station := r.binary(pos+23, 3)
	location := r.binary(pos+26, 1)

	if r.err != nil {
		return Trace{}, r.err
	}

	band, ok := bandCodeBySamplingRate[p.SamplingRate]
	if !ok {
		return Trace{}, &errs.UnknownEnumCodeError{FieldName: "sampling_rate", RawValue: uint64(p.SamplingRate)}
	}

	component := strconv.FormatUint(componentCode, 10)
	if p.ContactsNorth {
		name, ok := standardComponentNames[componentCode]
		if !ok {
			return Trace{}, &errs.UnknownEnumCodeError{FieldName: "component_code", RawValue: componentCode}
		}
		component = name
	}

	channel := band + instrumentCode + component
	startTime := time.UnixMicro(int64(startTimeMicros)).UTC()
	endTime := startTime.Add(durationFromSeconds(float64(npts-1) / p.SamplingRate))

	stats := Stats{
		Network:      strconv.FormatUint(network, 10),
		Station:      strconv.FormatUint(station, 10),
		Location:     strconv.FormatUint(location, 10),
		Channel:      channel,
		StartTime:    startTime,
		EndTime:      endTime,
		SamplingRate: p.SamplingRate,
		Npts:         int(npts),
	}

	var data []float32

	if !p.HeadOnly {
		dataStart := pos + 20 + 32*int64(nbrTraceExtensionBlocks)

		samples, err := readSamples(source, dataStart, int(npts))
		if err != nil {
			return Trace{}, err
		}

		if p.ContactsNorth && component == "Z" {
			for i := range samples {
				samples[i] = -samples[i]
			}
		}

		data = samples
	}

	if p.Details {
		traceHeaders, err := readTraceHeaders(source, pos, int(nbrTraceExtensionBlocks))
		if err != nil {
			return Trace{}, err
		}

		stats.RG16Details = &RG16Details{
			InitialHeaders: p.Initial,
			TraceHeaders:   traceHeaders,
		}
	}

	return Trace{Data: data, Stats: stats}, nil
}

func readSamples(source io.ReaderAt, start int64, npts int) ([]float32, error) {
	samples := make([]float32, npts)

	for i := 0; i < npts; i++ {
		v, err := field.ReadIEEE32(source, start+int64(i)*4)
		if err != nil {
			return nil, err
		}

		samples[i] = v
	}

	return samples, nil
}

func durationFromSeconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func readTraceHeaders(source io.ReaderAt, pos int64, nbrTraceExtensionBlocks int) (map[string]any, error) {
	r := &fieldReader{source: source}

	traceNumber := r.bcd(pos+4, field.BCDWhole(2), true)
	traceEditCode := r.binary(pos+11, 1)

	if r.err != nil {
		return nil, r.err
	}

	headers := map[string]any{
		"trace_number":    traceNumber,
		"trace_edit_code": traceEditCode,
	}

	for i := 1; i <= nbrTraceExtensionBlocks; i++ {
		block, err := readTraceExtensionBlock(source, pos, i)
		if err != nil {
			return nil, err
		}

		for k, v := range block {
			headers[k] = v
		}
	}

	return headers, nil
}
