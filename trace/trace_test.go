package trace

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/fairfield-nodal/rg16/errs"
	"github.com/fairfield-nodal/rg16/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTraceBlock returns a trace block with 3 extension blocks (the
// minimum real RG16 files carry, since network/station/location and the
// trace start time are read from fixed offsets inside blocks 1 and 3
// regardless of the declared extension-block count) followed by npts
// big-endian IEEE-754 samples.
func buildTraceBlock(componentCode byte, network, station, location uint32, startMicros uint64, samples []float32) []byte {
	const nbrExt = 3
	npts := uint32(len(samples))

	buf := make([]byte, 20+32*nbrExt+4*len(samples))
	buf[9] = nbrExt
	buf[27], buf[28], buf[29] = byte(npts>>16), byte(npts>>8), byte(npts)

	// block 1 (offset 20): network, station, location, component/sensor code
	buf[20], buf[21], buf[22] = byte(network>>16), byte(network>>8), byte(network)
	buf[23], buf[24], buf[25] = byte(station>>16), byte(station>>8), byte(station)
	buf[26] = byte(location)
	buf[40] = componentCode

	// block 3 (offset 84): trace start time, microseconds since epoch
	binary.BigEndian.PutUint64(buf[84:92], startMicros)

	dataStart := 20 + 32*nbrExt
	for i, s := range samples {
		binary.BigEndian.PutUint32(buf[dataStart+4*i:dataStart+4*i+4], math.Float32bits(s))
	}

	return buf
}

func TestDecodeOneBasic(t *testing.T) {
	samples := []float32{1, 2, 3, 4}
	buf := buildTraceBlock(2, 1, 2, 3, 1_000_000, samples)

	got, err := DecodeOne(bytes.NewReader(buf), 0, Params{SamplingRate: 250})
	require.NoError(t, err)

	assert.Equal(t, "1", got.Stats.Network)
	assert.Equal(t, "2", got.Stats.Station)
	assert.Equal(t, "3", got.Stats.Location)
	assert.Equal(t, "DP2", got.Stats.Channel)
	assert.Equal(t, 4, got.Stats.Npts)
	assert.Equal(t, samples, got.Data)
	assert.Equal(t, time.Unix(1, 0).UTC(), got.Stats.StartTime)
	assert.InDelta(t, 3.0/250.0, got.Stats.EndTime.Sub(got.Stats.StartTime).Seconds(), 1e-9)
}

func TestDecodeOneContactsNorthRemapsAndNegatesZ(t *testing.T) {
	samples := []float32{1, -2, 3}
	buf := buildTraceBlock(2, 1, 2, 3, 0, samples)

	got, err := DecodeOne(bytes.NewReader(buf), 0, Params{SamplingRate: 250, ContactsNorth: true})
	require.NoError(t, err)

	assert.Equal(t, "DPZ", got.Stats.Channel)
	assert.Equal(t, []float32{-1, 2, -3}, got.Data)
}

func TestDecodeOneContactsNorthNonZNotNegated(t *testing.T) {
	samples := []float32{1, -2, 3}
	buf := buildTraceBlock(3, 1, 2, 3, 0, samples) // component 3 -> N

	got, err := DecodeOne(bytes.NewReader(buf), 0, Params{SamplingRate: 250, ContactsNorth: true})
	require.NoError(t, err)

	assert.Equal(t, "DPN", got.Stats.Channel)
	assert.Equal(t, samples, got.Data)
}

func TestDecodeOneHeadOnly(t *testing.T) {
	samples := []float32{1, 2, 3, 4}
	buf := buildTraceBlock(2, 1, 2, 3, 0, samples)

	got, err := DecodeOne(bytes.NewReader(buf), 0, Params{SamplingRate: 250, HeadOnly: true})
	require.NoError(t, err)

	assert.Empty(t, got.Data)
	assert.Equal(t, 4, got.Stats.Npts)
}

func TestDecodeOneDetails(t *testing.T) {
	samples := []float32{1, 2}
	buf := buildTraceBlock(2, 1, 2, 3, 0, samples)

	got, err := DecodeOne(bytes.NewReader(buf), 0, Params{SamplingRate: 250, Details: true, Initial: header.Initial{}})
	require.NoError(t, err)

	require.NotNil(t, got.Stats.RG16Details)
	assert.Contains(t, got.Stats.RG16Details.TraceHeaders, "trace_number")
	assert.Contains(t, got.Stats.RG16Details.TraceHeaders, "extended_receiver_line_nbr")
	assert.Contains(t, got.Stats.RG16Details.TraceHeaders, "shot_line_nbr")
	assert.Contains(t, got.Stats.RG16Details.TraceHeaders, "epoch_time")
}

func TestDecodeOneUnknownComponentCodeUnderContactsNorth(t *testing.T) {
	samples := []float32{1}
	buf := buildTraceBlock(9, 1, 2, 3, 0, samples) // 9 has no standard mapping

	_, err := DecodeOne(bytes.NewReader(buf), 0, Params{SamplingRate: 250, ContactsNorth: true})
	require.Error(t, err)

	var target *errs.UnknownEnumCodeError
	require.ErrorAs(t, err, &target)
}

func TestDecodeOneTruncated(t *testing.T) {
	buf := buildTraceBlock(2, 1, 2, 3, 0, []float32{1, 2})
	buf = buf[:len(buf)-4] // drop the last sample

	_, err := DecodeOne(bytes.NewReader(buf), 0, Params{SamplingRate: 250})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrTruncatedSource)
}

func TestStatsID(t *testing.T) {
	s := Stats{Network: "1", Station: "2", Location: "3", Channel: "DPZ"}
	assert.Equal(t, "1.2.3.DPZ", s.ID())
}

func TestSamplingRateFromBaseScanInterval(t *testing.T) {
	tests := []struct {
		base uint64
		want float64
	}{
		{8, 2000},
		{16, 1000},
		{32, 500},
		{64, 250},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SamplingRateFromBaseScanInterval(tt.base))
	}
}
