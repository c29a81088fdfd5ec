// Package header decodes the fixed and variable-length header hierarchy
// that precedes the trace-block region of an RG16 file: the two 32-byte
// general headers, the channel-set descriptor array, and the extended
// header array (whose tail blocks depend on a count field read from the
// second extended header).
package header

import (
	"io"
	"strconv"
	"time"

	"github.com/fairfield-nodal/rg16/field"
)

// General1 is general header block 1, bytes 0..31.
type General1 struct {
	FileNumber                uint64
	SampleFormatCode          uint64
	GeneralConstant           uint64
	TimeSliceYear             uint64
	NbrAddGeneralHeader       uint64
	JulianDay                 uint64
	TimeSlice                 uint64
	ManufacturerCode          uint64
	ManufacturerSerialNumber  uint64
	BaseScanInterval          uint64
	PolarityCode              uint64
	RecordType                uint64
	ScanTypePerRecord         uint64
	NbrChannelSet             uint64
	NbrSkewBlock              uint64
}

// General2 is general header block 2, bytes 32..63.
type General2 struct {
	ExtendedFileNumber             uint64
	ExtendedChannelSetsPerScanType uint64
	ExtendedHeaderBlocks           uint64
	ExternalHeaderBlocks           uint64
	VersionNumber                  uint64
	ExtendedRecordLength           uint64
	GeneralHeaderBlockNumber       uint64
}

// ChannelSetDescriptor is one 32-byte channel-set descriptor block.
type ChannelSetDescriptor struct {
	ScanTypeNumber                 uint64
	ChannelSetNumber               uint64
	StartTime                      float64 // seconds
	EndTime                        float64 // seconds
	OptionalMPFactor               uint64
	MPFactorDescalerMultiplier     uint64
	NbrChannelsInChannelSet        uint64
	ChannelTypeCode                uint64
	NbrSubScans                    uint64
	GainControlType                uint64
	AliasFilterFrequency           uint64 // Hz
	AliasFilterSlope               uint64 // dB/octave
	LowCutFilterFreq               uint64 // Hz
	LowCutFilterSlope              uint64 // dB/octave
	NotchFilterFreq                float64 // Hz
	Notch2FilterFreq               float64 // Hz
	Notch3FilterFreq               float64 // Hz
	ExtendedChannelSetNumber       uint64
	ExtendedHeaderFlag             uint64
	Nbr32ByteTraceHeaderExtension  uint64
	VerticalStackSize              uint64
	RUChannelNumber                uint64
	ArrayForming                   uint64
}

// ExtendedHeader1 carries the remote-unit identifier and deployment times.
type ExtendedHeader1 struct {
	IDRU           uint64
	DeploymentTime time.Time
	PickUpTime     time.Time
	StartTimeRU    time.Time
}

// ExtendedHeader2 carries clock-quality and acquisition metadata, including
// the decimation coefficient count that governs how many extended header
// blocks beyond the third exist.
type ExtendedHeader2 struct {
	AcquisitionDriftWindow        float64 // seconds
	ClockDrift                    float64 // seconds
	ClockStopMethod               string
	FrequencyDrift                string
	OscillatorType                string
	DataCollectionMethod          string
	NbrTimeSlices                 uint64
	NbrFiles                      uint64
	FileNumber                    uint64
	DataDecimation                string
	OriginalBaseScanInterval      uint64
	NbrDecimationFilterCoefficient uint64
}

// ExtendedHeader3 carries receiver and shot-point bracketing fields.
type ExtendedHeader3 struct {
	ReceiverLineNumber     uint64
	ReceiverPoint          uint64
	ReceiverPointIndex     uint64
	FirstShotLine          uint64
	FirstShotPoint         uint64
	FirstShotPointIndex    uint64
	LastShotLine           uint64
	LastShotPoint          uint64
	LastShotPointIndex     uint64
}

// ExtendedHeaders is the full extended-header array: the three fixed-layout
// blocks plus any decimation-coefficient blocks beyond them, flattened.
type ExtendedHeaders struct {
	Header1                ExtendedHeader1
	Header2                ExtendedHeader2
	Header3                ExtendedHeader3
	DecimationCoefficients []float32
}

// Initial is the complete initial-header region of an RG16 file: everything
// before the first trace block.
type Initial struct {
	General1        General1
	General2        General2
	ChannelSets     []ChannelSetDescriptor
	ExtendedHeaders ExtendedHeaders
}

// ReadInitial decodes the initial-header region starting at the beginning
// of source. It does not validate that source is actually RG16 (that check
// belongs to the format probe and the decode entry points) — it only parses
// what's there, byte for byte.
func ReadInitial(source io.ReaderAt) (Initial, error) {
	g1, err := readGeneral1(source)
	if err != nil {
		return Initial{}, err
	}

	g2, err := readGeneral2(source)
	if err != nil {
		return Initial{}, err
	}

	channelSets, err := readChannelSets(source, g1.NbrChannelSet)
	if err != nil {
		return Initial{}, err
	}

	extHeaders, err := readExtendedHeaders(source, g1.NbrChannelSet, g2.ExtendedHeaderBlocks)
	if err != nil {
		return Initial{}, err
	}

	return Initial{
		General1:        g1,
		General2:        g2,
		ChannelSets:     channelSets,
		ExtendedHeaders: extHeaders,
	}, nil
}

// TraceBlockStart returns the absolute offset of the first trace block,
// immediately following the two general headers, the channel-set
// descriptors, and the extended and external header blocks.
func (in Initial) TraceBlockStart() int64 {
	n := int64(2) + int64(len(in.ChannelSets)) + int64(in.General2.ExtendedHeaderBlocks) + int64(in.General2.ExternalHeaderBlocks)
	return 32 * n
}

func readGeneral1(source io.ReaderAt) (General1, error) {
	r := &fieldReader{source: source}

	g := General1{
		FileNumber:               r.bcd(0, field.BCDWhole(2), true),
		SampleFormatCode:         r.bcd(2, field.BCDWhole(2), true),
		GeneralConstant:          r.bcd(4, field.BCDWhole(6), true),
		TimeSliceYear:            r.bcd(10, field.BCDWhole(1), true),
		NbrAddGeneralHeader:      r.bcd(11, field.BCDHalfByte(), true),
		JulianDay:                r.bcd(11, field.BCDWithLeadingHalfByte(1), false),
		TimeSlice:                r.bcd(13, field.BCDWhole(3), true),
		ManufacturerCode:         r.bcd(16, field.BCDWhole(1), true),
		ManufacturerSerialNumber: r.bcd(17, field.BCDWhole(2), true),
		BaseScanInterval:         r.binary(22, 1),
		PolarityCode:             r.bcd(23, field.BCDHalfByte(), true),
		RecordType:               r.bcd(25, field.BCDHalfByte(), true),
		ScanTypePerRecord:        r.bcd(27, field.BCDWhole(1), true),
		NbrChannelSet:            r.bcd(28, field.BCDWhole(1), true),
		NbrSkewBlock:             r.bcd(29, field.BCDWhole(1), true),
	}

	return g, r.err
}

func readGeneral2(source io.ReaderAt) (General2, error) {
	r := &fieldReader{source: source}

	g := General2{
		ExtendedFileNumber:             r.binary(32, 3),
		ExtendedChannelSetsPerScanType: r.binary(35, 2),
		ExtendedHeaderBlocks:           r.binary(37, 2),
		ExternalHeaderBlocks:           r.binary(39, 3),
		VersionNumber:                  r.binary(42, 2),
		ExtendedRecordLength:           r.binary(46, 3),
		GeneralHeaderBlockNumber:       r.binary(50, 1),
	}

	return g, r.err
}

func readChannelSets(source io.ReaderAt, nbrChannelSet uint64) ([]ChannelSetDescriptor, error) {
	sets := make([]ChannelSetDescriptor, 0, nbrChannelSet)
	start := int64(64)

	for i := uint64(0); i < nbrChannelSet; i++ {
		cs, err := readChannelSet(source, start)
		if err != nil {
			return nil, err
		}

		sets = append(sets, cs)
		start += 32
	}

	return sets, nil
}

func readChannelSet(source io.ReaderAt, start int64) (ChannelSetDescriptor, error) {
	r := &fieldReader{source: source}

	cs := ChannelSetDescriptor{
		ScanTypeNumber:                r.bcd(start, field.BCDWhole(1), true),
		ChannelSetNumber:              r.bcd(start+1, field.BCDWhole(1), true),
		StartTime:                     float64(r.binary(start+2, 2)) * 2e-3,
		EndTime:                       float64(r.binary(start+4, 2)) * 2e-3,
		OptionalMPFactor:              r.binary(start+6, 1),
		MPFactorDescalerMultiplier:    r.binary(start+7, 1),
		NbrChannelsInChannelSet:       r.bcd(start+8, field.BCDWhole(2), true),
		ChannelTypeCode:               r.bcd(start+10, field.BCDHalfByte(), true),
		NbrSubScans:                   r.bcd(start+11, field.BCDHalfByte(), true),
		GainControlType:               r.bcd(start+11, field.BCDHalfByte(), false),
		AliasFilterFrequency:          r.bcd(start+12, field.BCDWhole(2), true),
		AliasFilterSlope:              r.bcd(start+14, field.BCDWhole(2), true),
		LowCutFilterFreq:              r.bcd(start+16, field.BCDWhole(2), true),
		LowCutFilterSlope:             r.bcd(start+18, field.BCDWhole(2), true),
		NotchFilterFreq:               float64(r.bcd(start+20, field.BCDWhole(2), true)) / 10,
		Notch2FilterFreq:              float64(r.bcd(start+22, field.BCDWhole(2), true)) / 10,
		Notch3FilterFreq:              float64(r.bcd(start+24, field.BCDWhole(2), true)) / 10,
		ExtendedChannelSetNumber:      r.binary(start+26, 2),
		ExtendedHeaderFlag:            r.bcd(start+28, field.BCDHalfByte(), true),
		Nbr32ByteTraceHeaderExtension: r.bcd(start+28, field.BCDHalfByte(), false),
		VerticalStackSize:             r.binary(start+29, 1),
		RUChannelNumber:               r.binary(start+30, 1),
		ArrayForming:                  r.binary(start+31, 1),
	}

	return cs, r.err
}

func readExtendedHeaders(source io.ReaderAt, nbrChannelSet, nbrExtendedHeaderBlocks uint64) (ExtendedHeaders, error) {
	start := int64(64) + int64(nbrChannelSet)*32

	h1, err := readExtendedHeader1(source, start)
	if err != nil {
		return ExtendedHeaders{}, err
	}
	start += 32

	h2, err := readExtendedHeader2(source, start)
	if err != nil {
		return ExtendedHeaders{}, err
	}
	start += 32

	h3, err := readExtendedHeader3(source, start)
	if err != nil {
		return ExtendedHeaders{}, err
	}

	var coeffs []float32

	if nbrExtendedHeaderBlocks > 3 {
		remain := h2.NbrDecimationFilterCoefficient % 8

		for i := uint64(3); i < nbrExtendedHeaderBlocks; i++ {
			start += 32

			n := uint64(8)
			if i == nbrExtendedHeaderBlocks-1 {
				n = remain
			}

			blockCoeffs, err := readDecimationCoefficients(source, start, n)
			if err != nil {
				return ExtendedHeaders{}, err
			}

			coeffs = append(coeffs, blockCoeffs...)
		}
	}

	return ExtendedHeaders{
		Header1:                h1,
		Header2:                h2,
		Header3:                h3,
		DecimationCoefficients: coeffs,
	}, nil
}

func readDecimationCoefficients(source io.ReaderAt, start int64, n uint64) ([]float32, error) {
	coeffs := make([]float32, 0, n)

	for i := uint64(0); i < n; i++ {
		v, err := field.ReadIEEE32(source, start+int64(i)*4)
		if err != nil {
			return nil, err
		}

		coeffs = append(coeffs, v)
	}

	return coeffs, nil
}

func readExtendedHeader1(source io.ReaderAt, start int64) (ExtendedHeader1, error) {
	r := &fieldReader{source: source}

	h := ExtendedHeader1{
		IDRU:           r.binary(start, 8),
		DeploymentTime: microsToTime(r.binary(start+8, 8)),
		PickUpTime:     microsToTime(r.binary(start+16, 8)),
		StartTimeRU:    microsToTime(r.binary(start+24, 8)),
	}

	return h, r.err
}

func readExtendedHeader2(source io.ReaderAt, start int64) (ExtendedHeader2, error) {
	r := &fieldReader{source: source}

	acquisitionDriftWindow := float64(r.ieee32(start)) * 1e-6
	clockDrift := float64(r.binary(start+4, 8)) * 1e-9
	clockStopCode := r.binary(start+12, 1)
	freqDriftCode := r.binary(start+13, 1)
	oscCode := r.binary(start+14, 1)
	dataCollCode := r.binary(start+15, 1)
	nbrTimeSlices := r.binary(start+16, 4)
	nbrFiles := r.binary(start+20, 4)
	fileNumber := r.binary(start+24, 4)
	dataDecimationCode := r.binary(start+28, 1)
	originalBaseScanInterval := r.binary(start+29, 1)
	nbrDecCoeff := r.binary(start+30, 2)

	if r.err != nil {
		return ExtendedHeader2{}, r.err
	}

	clockStop, err := lookupClockStopMethod(clockStopCode)
	if err != nil {
		return ExtendedHeader2{}, err
	}

	freqDrift, err := lookupFrequencyDrift(freqDriftCode)
	if err != nil {
		return ExtendedHeader2{}, err
	}

	osc, err := lookupOscillatorType(oscCode)
	if err != nil {
		return ExtendedHeader2{}, err
	}

	dataColl, err := lookupDataCollectionMethod(dataCollCode)
	if err != nil {
		return ExtendedHeader2{}, err
	}

	dataDecimation, err := lookupDataDecimation(dataDecimationCode)
	if err != nil {
		return ExtendedHeader2{}, err
	}

	return ExtendedHeader2{
		AcquisitionDriftWindow:         acquisitionDriftWindow,
		ClockDrift:                     clockDrift,
		ClockStopMethod:                clockStop,
		FrequencyDrift:                 freqDrift,
		OscillatorType:                 osc,
		DataCollectionMethod:           dataColl,
		NbrTimeSlices:                  nbrTimeSlices,
		NbrFiles:                       nbrFiles,
		FileNumber:                     fileNumber,
		DataDecimation:                 dataDecimation,
		OriginalBaseScanInterval:       originalBaseScanInterval,
		NbrDecimationFilterCoefficient: nbrDecCoeff,
	}, nil
}

func readExtendedHeader3(source io.ReaderAt, start int64) (ExtendedHeader3, error) {
	r := &fieldReader{source: source}

	h := ExtendedHeader3{
		ReceiverLineNumber:  r.binary(start, 4),
		ReceiverPoint:       r.binary(start+4, 4),
		ReceiverPointIndex:  r.binary(start+8, 1),
		FirstShotLine:       r.binary(start+9, 4),
		FirstShotPoint:      r.binary(start+13, 4),
		FirstShotPointIndex: r.binary(start+17, 1),
		LastShotLine:        r.binary(start+18, 4),
		LastShotPoint:       r.binary(start+22, 4),
		LastShotPointIndex:  r.binary(start+26, 1),
	}

	return h, r.err
}

// Details renders the nested, heterogeneously-typed view of every decoded
// header field, built lazily on request rather than carried as the primary
// representation.
func (in Initial) Details() map[string]any {
	return map[string]any{
		"general_header_1": map[string]any{
			"file_number":                in.General1.FileNumber,
			"sample_format_code":         in.General1.SampleFormatCode,
			"general_constant":           in.General1.GeneralConstant,
			"time_slice_year":            in.General1.TimeSliceYear,
			"nbr_add_general_header":     in.General1.NbrAddGeneralHeader,
			"julian_day":                 in.General1.JulianDay,
			"time_slice":                 in.General1.TimeSlice,
			"manufacturer_code":          in.General1.ManufacturerCode,
			"manufacturer_serial_number": in.General1.ManufacturerSerialNumber,
			"base_scan_interval":         in.General1.BaseScanInterval,
			"polarity_code":              in.General1.PolarityCode,
			"record_type":                in.General1.RecordType,
			"scan_type_per_record":       in.General1.ScanTypePerRecord,
			"nbr_channel_set":            in.General1.NbrChannelSet,
			"nbr_skew_block":             in.General1.NbrSkewBlock,
		},
		"general_header_2": map[string]any{
			"extended_file_number":                in.General2.ExtendedFileNumber,
			"extended_channel_sets_per_scan_type": in.General2.ExtendedChannelSetsPerScanType,
			"extended_header_blocks":             in.General2.ExtendedHeaderBlocks,
			"external_header_blocks":             in.General2.ExternalHeaderBlocks,
			"version_number":                      in.General2.VersionNumber,
			"extended_record_length":             in.General2.ExtendedRecordLength,
			"general_header_block_number":        in.General2.GeneralHeaderBlockNumber,
		},
		"channel_sets_descriptor": channelSetsDetails(in.ChannelSets),
		"extended_headers":        extendedHeadersDetails(in.ExtendedHeaders),
	}
}

func channelSetsDetails(sets []ChannelSetDescriptor) map[string]any {
	out := make(map[string]any, len(sets))

	for i, cs := range sets {
		out[strconv.Itoa(i+1)] = map[string]any{
			"scan_type_number":                   cs.ScanTypeNumber,
			"channel_set_number":                  cs.ChannelSetNumber,
			"channel_set_start_time":              cs.StartTime,
			"channel_set_end_time":                cs.EndTime,
			"optional_mp_factor":                  cs.OptionalMPFactor,
			"mp_factor_descaler_multiplier":       cs.MPFactorDescalerMultiplier,
			"nbr_channels_in_channel_set":          cs.NbrChannelsInChannelSet,
			"channel_type_code":                    cs.ChannelTypeCode,
			"nbr_sub_scans":                        cs.NbrSubScans,
			"gain_control_type":                    cs.GainControlType,
			"alias_filter_frequency":               cs.AliasFilterFrequency,
			"alias_filter_slope":                   cs.AliasFilterSlope,
			"low_cut_filter_freq":                  cs.LowCutFilterFreq,
			"low_cut_filter_slope":                 cs.LowCutFilterSlope,
			"notch_filter_freq":                    cs.NotchFilterFreq,
			"notch_2_filter_freq":                  cs.Notch2FilterFreq,
			"notch_3_filter_freq":                  cs.Notch3FilterFreq,
			"extended_channel_set_number":           cs.ExtendedChannelSetNumber,
			"extended_header_flag":                 cs.ExtendedHeaderFlag,
			"nbr_32_byte_trace_header_extension":    cs.Nbr32ByteTraceHeaderExtension,
			"vertical_stack_size":                   cs.VerticalStackSize,
			"RU_channel_number":                     cs.RUChannelNumber,
			"array_forming":                         cs.ArrayForming,
		}
	}

	return out
}

func extendedHeadersDetails(eh ExtendedHeaders) map[string]any {
	out := map[string]any{
		"1": map[string]any{
			"id_ru":           eh.Header1.IDRU,
			"deployment_time": eh.Header1.DeploymentTime,
			"pick_up_time":    eh.Header1.PickUpTime,
			"start_time_ru":   eh.Header1.StartTimeRU,
		},
		"2": map[string]any{
			"acquisition_drift_window":             eh.Header2.AcquisitionDriftWindow,
			"clock_drift":                           eh.Header2.ClockDrift,
			"clock_stop_method":                     eh.Header2.ClockStopMethod,
			"frequency_drift":                       eh.Header2.FrequencyDrift,
			"oscillator_type":                       eh.Header2.OscillatorType,
			"data_collection_method":                eh.Header2.DataCollectionMethod,
			"nbr_time_slices":                       eh.Header2.NbrTimeSlices,
			"nbr_files":                             eh.Header2.NbrFiles,
			"file_number":                           eh.Header2.FileNumber,
			"data_decimation":                       eh.Header2.DataDecimation,
			"original_base_scan_interval":           eh.Header2.OriginalBaseScanInterval,
			"number_decimation_filter_coefficient": eh.Header2.NbrDecimationFilterCoefficient,
		},
		"3": map[string]any{
			"receiver_line_number":    eh.Header3.ReceiverLineNumber,
			"receiver_point":          eh.Header3.ReceiverPoint,
			"receiver_point_index":    eh.Header3.ReceiverPointIndex,
			"first_shot_line":         eh.Header3.FirstShotLine,
			"first_shot_point":        eh.Header3.FirstShotPoint,
			"first_shot_point_index":  eh.Header3.FirstShotPointIndex,
			"last_shot_line":          eh.Header3.LastShotLine,
			"last_shot_point":         eh.Header3.LastShotPoint,
			"last_shot_point_index":   eh.Header3.LastShotPointIndex,
		},
	}

	if len(eh.DecimationCoefficients) > 0 {
		out["decimation_coefficients"] = eh.DecimationCoefficients
	}

	return out
}
