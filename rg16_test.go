package rg16

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/fairfield-nodal/rg16/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildInitialHeader returns a 192-byte initial-header region with a single
// channel-set descriptor (RU channel ruChannel), base scan interval set for
// 250 Hz, and the given number of time slices.
func buildInitialHeader(ruChannel byte, nbrTimeSlices uint32) []byte {
	buf := make([]byte, 192)

	buf[2], buf[3] = 0x80, 0x58 // sample_format_code BCD = 8058
	buf[16] = 0x20              // manufacturer_code BCD = 20
	buf[22] = 64                // base_scan_interval -> 250 Hz
	buf[28] = 0x01              // nbr_channel_set BCD = 1
	binary.BigEndian.PutUint16(buf[37:39], 3)   // nbr_extended_headers = 3
	binary.BigEndian.PutUint16(buf[42:44], 262) // version = 262

	buf[64+30] = ruChannel

	eh2 := 128
	binary.BigEndian.PutUint32(buf[eh2+16:eh2+20], nbrTimeSlices)

	return buf
}

// buildTraceBlock returns one trace block (preamble + 3 extension blocks +
// samples), matching the offsets package trace's DecodeOne reads.
func buildTraceBlock(componentCode byte, startMicros uint64, samples []float32) []byte {
	const nbrExt = 3
	npts := uint32(len(samples))

	buf := make([]byte, 20+32*nbrExt+4*len(samples))
	buf[9] = nbrExt
	buf[27], buf[28], buf[29] = byte(npts>>16), byte(npts>>8), byte(npts)
	buf[40] = componentCode

	binary.BigEndian.PutUint64(buf[84:92], startMicros)

	dataStart := 20 + 32*nbrExt
	for i, s := range samples {
		binary.BigEndian.PutUint32(buf[dataStart+4*i:dataStart+4*i+4], math.Float32bits(s))
	}

	return buf
}

func buildFile(initialHeader []byte, traceBlocks ...[]byte) []byte {
	var buf bytes.Buffer
	buf.Write(initialHeader)
	for _, b := range traceBlocks {
		buf.Write(b)
	}
	return buf.Bytes()
}

func TestIsRG16ShortFile(t *testing.T) {
	// S1
	buf := make([]byte, 10)
	assert.False(t, IsRG16(bytes.NewReader(buf)))
}

func TestIsRG16Valid(t *testing.T) {
	buf := buildInitialHeader(2, 1)
	assert.True(t, IsRG16(bytes.NewReader(buf)))
}

func TestDecodeSingleTraceFile(t *testing.T) {
	// S2
	samples := make([]float32, 2500)
	for i := range samples {
		samples[i] = float32(i)
	}

	header := buildInitialHeader(2, 1)
	block := buildTraceBlock(2, 0, samples)
	file := buildFile(header, block)

	traces, err := Decode(bytes.NewReader(file), withNowFunc(func() time.Time {
		return time.Unix(1<<32, 0).UTC()
	}))
	require.NoError(t, err)
	require.Len(t, traces, 1)

	tr := traces[0]
	assert.Equal(t, 250.0, tr.Stats.SamplingRate)
	assert.Equal(t, 2500, tr.Stats.Npts)
	assert.Equal(t, "DP2", tr.Stats.Channel)
	assert.InDelta(t, 9.996, tr.Stats.EndTime.Sub(tr.Stats.StartTime).Seconds(), 1e-9)
}

func TestDecodeContactsNorthNegatesZ(t *testing.T) {
	// S3
	samples := []float32{1, -2, 3, -4}

	header := buildInitialHeader(2, 1)
	block := buildTraceBlock(2, 0, samples)
	file := buildFile(header, block)

	plain, err := Decode(bytes.NewReader(file), withNowFunc(func() time.Time { return time.Unix(1<<32, 0).UTC() }))
	require.NoError(t, err)

	remapped, err := Decode(bytes.NewReader(file), WithContactsNorth(),
		withNowFunc(func() time.Time { return time.Unix(1<<32, 0).UTC() }))
	require.NoError(t, err)

	require.Len(t, remapped, 1)
	assert.Equal(t, "DPZ", remapped[0].Stats.Channel)

	for i := range plain[0].Data {
		assert.Equal(t, -plain[0].Data[i], remapped[0].Data[i])
	}
}

func TestDecodeTimeWindowFilter(t *testing.T) {
	// S4
	t0 := time.Unix(1_000_000, 0).UTC()

	header := buildInitialHeader(2, 3)
	b1 := buildTraceBlock(2, uint64(t0.UnixMicro()), []float32{1})
	b2 := buildTraceBlock(2, uint64(t0.Add(10*time.Second).UnixMicro()), []float32{1})
	b3 := buildTraceBlock(2, uint64(t0.Add(20*time.Second).UnixMicro()), []float32{1})
	file := buildFile(header, b1, b2, b3)

	traces, err := Decode(bytes.NewReader(file),
		WithStartTime(t0.Add(5*time.Second)),
		WithEndTime(t0.Add(20*time.Second)))
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Equal(t, t0.Add(10*time.Second), traces[0].Stats.StartTime)
}

func TestDecodeMerge(t *testing.T) {
	// S5
	t0 := time.Unix(2_000_000, 0).UTC()
	const npts = 1000

	header := buildInitialHeader(2, 100)
	header[22] = 16 // base_scan_interval -> 1000 Hz

	blocks := make([][]byte, 0, 100)
	samples := make([]float32, npts)

	for i := 0; i < 100; i++ {
		start := t0.Add(time.Duration(i) * time.Second)
		blocks = append(blocks, buildTraceBlock(2, uint64(start.UnixMicro()), samples))
	}

	file := buildFile(header, blocks...)

	withoutMerge, err := Decode(bytes.NewReader(file),
		withNowFunc(func() time.Time { return t0.Add(200 * time.Second) }))
	require.NoError(t, err)
	assert.Len(t, withoutMerge, 100)

	withMerge, err := Decode(bytes.NewReader(file), WithMerge(),
		withNowFunc(func() time.Time { return t0.Add(200 * time.Second) }))
	require.NoError(t, err)
	require.Len(t, withMerge, 1)
	assert.Equal(t, 100000, withMerge[0].Stats.Npts)
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	// S6
	header := buildInitialHeader(2, 1)
	binary.BigEndian.PutUint16(header[42:44], 261) // wrong version
	block := buildTraceBlock(2, 0, []float32{1})
	file := buildFile(header, block)

	assert.False(t, IsRG16(bytes.NewReader(file)))

	_, err := Decode(bytes.NewReader(file))
	require.Error(t, err)

	var target *errs.NotRG16Error
	require.ErrorAs(t, err, &target)
}

func TestDecodeHeadOnly(t *testing.T) {
	header := buildInitialHeader(2, 1)
	block := buildTraceBlock(2, 0, []float32{1, 2, 3})
	file := buildFile(header, block)

	traces, err := Decode(bytes.NewReader(file), WithHeadOnly(),
		withNowFunc(func() time.Time { return time.Unix(1<<32, 0).UTC() }))
	require.NoError(t, err)
	require.Len(t, traces, 1)
	assert.Empty(t, traces[0].Data)
	assert.Equal(t, 3, traces[0].Stats.Npts)
}

func TestDecodeIsPure(t *testing.T) {
	// Invariant 5
	header := buildInitialHeader(2, 1)
	block := buildTraceBlock(2, 0, []float32{1, 2, 3})
	file := buildFile(header, block)

	now := func() time.Time { return time.Unix(1<<32, 0).UTC() }

	a, err := Decode(bytes.NewReader(file), withNowFunc(now))
	require.NoError(t, err)

	b, err := Decode(bytes.NewReader(file), withNowFunc(now))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func BenchmarkDecodeManyBlocks(b *testing.B) {
	const nbrBlocks = 500
	const npts = 500

	t0 := time.Unix(1_000_000, 0).UTC()
	samples := make([]float32, npts)
	for i := range samples {
		samples[i] = float32(i)
	}

	initialHeader := buildInitialHeader(2, nbrBlocks)

	blocks := make([][]byte, nbrBlocks)
	for i := range blocks {
		start := t0.Add(time.Duration(i) * time.Second)
		blocks[i] = buildTraceBlock(2, uint64(start.UnixMicro()), samples)
	}

	file := buildFile(initialHeader, blocks...)
	now := func() time.Time { return t0.Add((nbrBlocks + 1) * time.Second) }

	b.ResetTimer()
	for b.Loop() {
		if _, err := Decode(bytes.NewReader(file), withNowFunc(now)); err != nil {
			b.Fatal(err)
		}
	}
}
