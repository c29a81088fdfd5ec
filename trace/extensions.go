package trace

import (
	"io"
	"time"

	"github.com/fairfield-nodal/rg16/errs"
)

// readTraceExtensionBlock decodes the nth 32-byte trace-extension block
// (1-indexed), located immediately after the 20-byte preamble.
func readTraceExtensionBlock(source io.ReaderAt, pos int64, blockNumber int) (map[string]any, error) {
	if blockNumber < 1 || blockNumber > 10 {
		return nil, &errs.UnknownTraceExtensionBlockError{Index: blockNumber}
	}

	start := pos + 20 + 32*int64(blockNumber-1)

	switch blockNumber {
	case 1:
		return readTraceExtensionBlock1(source, start)
	case 2:
		return readTraceExtensionBlock2(source, start)
	case 3:
		return readTraceExtensionBlock3(source, start)
	case 4:
		return readTraceExtensionBlock4(source, start)
	case 5:
		return readTraceExtensionBlock5(source, start)
	case 6:
		return readTraceExtensionBlock6(source, start)
	case 7:
		return readTraceExtensionBlock7(source, start)
	case 8:
		return readTraceExtensionBlock8(source, start)
	case 9:
		return readTraceExtensionBlock9(source, start)
	default:
		return readTraceExtensionBlock10(source, start)
	}
}

func readTraceExtensionBlock1(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	extLine := r.binary(start+10, 5)
	extPoint := r.binary(start+15, 5)
	sensorType := r.binary(start+20, 1)
	traceCountFile := r.binary(start+21, 4)

	if r.err != nil {
		return nil, r.err
	}

	return map[string]any{
		"extended_receiver_line_nbr":  extLine,
		"extended_receiver_point_nbr": extPoint,
		"sensor_type":                 sensorType,
		"trace_count_file":            traceCountFile,
	}, nil
}

func readTraceExtensionBlock2(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	shotLine := r.binary(start, 4)
	shotPoint := r.binary(start+4, 4)
	shotPointIndex := r.binary(start+8, 1)
	prePlanX := float64(r.binary(start+9, 4)) / 10
	prePlanY := float64(r.binary(start+13, 4)) / 10
	finalX := float64(r.binary(start+17, 4)) / 10
	finalY := float64(r.binary(start+21, 4)) / 10
	finalDepth := float64(r.binary(start+25, 4)) / 10
	sourceInfoCode := r.binary(start+29, 1)
	energySourceCode := r.binary(start+30, 1)

	if r.err != nil {
		return nil, r.err
	}

	sourceInfo, err := lookupSourceOfFinalShotInfo(sourceInfoCode)
	if err != nil {
		return nil, err
	}

	energySource, err := lookupEnergySourceType(energySourceCode)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"shot_line_nbr":              shotLine,
		"shot_point":                 shotPoint,
		"shot_point_index":           shotPointIndex,
		"shot_point_pre_plan_x":      prePlanX,
		"shot_point_pre_plan_y":      prePlanY,
		"shot_point_final_x":         finalX,
		"shot_point_final_y":         finalY,
		"shot_point_final_depth":     finalDepth,
		"source_of_final_shot_info":  sourceInfo,
		"energy_source_type":         energySource,
	}, nil
}

func readTraceExtensionBlock3(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	epochMicros := r.binary(start, 8)
	shotSkew := float64(r.binary(start+8, 8)) / 1e6
	timeShiftClockCorrection := float64(r.binary(start+16, 8)) / 1e9
	remainingClockCorrection := float64(r.binary(start+24, 8)) / 1e9

	if r.err != nil {
		return nil, r.err
	}

	return map[string]any{
		"epoch_time":                    time.UnixMicro(int64(epochMicros)).UTC(),
		"shot_skew_time":                shotSkew,
		"time_shift_clock_correction":   timeShiftClockCorrection,
		"remaining_clock_correction":    remainingClockCorrection,
	}, nil
}

func readTraceExtensionBlock4(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	preGuard := float64(r.binary(start, 4)) / 1e3
	postGuard := float64(r.binary(start+4, 4)) / 1e3
	preampGain := r.binary(start+8, 1)
	clippedCode := r.binary(start+9, 1)
	recordTypeCode := r.binary(start+10, 1)
	shotStatusCode := r.binary(start+11, 1)
	externalShotID := r.binary(start+12, 4)
	firstBreakPick := r.ieee32(start + 24)
	rmsNoise := r.ieee32(start + 28)

	if r.err != nil {
		return nil, r.err
	}

	clipped, err := lookupTraceClippedFlag(clippedCode)
	if err != nil {
		return nil, err
	}

	recordType, err := lookupRecordTypeCode(recordTypeCode)
	if err != nil {
		return nil, err
	}

	shotStatus, err := lookupShotStatusFlag(shotStatusCode)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"pre_shot_guard_band":                    preGuard,
		"post_shot_guard_band":                   postGuard,
		"preamp_gain":                             preampGain,
		"trace_clipped_flag":                      clipped,
		"record_type_code":                        recordType,
		"shot_status_flag":                        shotStatus,
		"external_shot_id":                        externalShotID,
		"post_processed_first_break_pick_time":    firstBreakPick,
		"post_processed_rms_noise":                rmsNoise,
	}, nil
}

func readTraceExtensionBlock5(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	prePlanX := float64(r.binary(start+9, 4)) / 10
	prePlanY := float64(r.binary(start+13, 4)) / 10
	finalX := float64(r.binary(start+17, 4)) / 10
	finalY := float64(r.binary(start+21, 4)) / 10
	finalDepth := float64(r.binary(start+25, 4)) / 10
	sourceInfoCode := r.binary(start+29, 1)

	if r.err != nil {
		return nil, r.err
	}

	sourceInfo, err := lookupSourceOfFinalReceiverInfo(sourceInfoCode)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"receiver_point_pre_plan_x":      prePlanX,
		"receiver_point_pre_plan_y":      prePlanY,
		"receiver_point_final_x":         finalX,
		"receiver_point_final_y":         finalY,
		"receiver_point_final_depth":     finalDepth,
		"source_of_final_receiver_info":  sourceInfo,
	}, nil
}

func readTraceExtensionBlock6(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	block := map[string]any{
		"tilt_matrix_h1x": r.ieee32(start),
		"tilt_matrix_h2x": r.ieee32(start + 4),
		"tilt_matrix_vx":  r.ieee32(start + 8),
		"tilt_matrix_h1y": r.ieee32(start + 12),
		"tilt_matrix_h2y": r.ieee32(start + 16),
		"tilt_matrix_vy":  r.ieee32(start + 20),
		"tilt_matrix_h1z": r.ieee32(start + 24),
		"tilt_matrix_h2z": r.ieee32(start + 28),
	}

	return block, r.err
}

func readTraceExtensionBlock7(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	block := map[string]any{
		"tilt_matrix_vz":                r.ieee32(start),
		"azimuth_degree":                r.ieee32(start + 4),
		"pitch_degree":                  r.ieee32(start + 8),
		"roll_degree":                   r.ieee32(start + 12),
		"remote_unit_temp":              r.ieee32(start + 16),
		"remote_unit_humidity":          r.ieee32(start + 20),
		"orientation_matrix_version_nbr": r.binary(start+24, 4),
		"gimbal_corrections":            r.binary(start+28, 1),
	}

	return block, r.err
}

func readTraceExtensionBlock8(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	fairfieldTest := r.binary(start, 4)
	firstTest := r.binary(start+4, 4)
	secondTest := r.binary(start+8, 4)
	startDelay := float64(r.binary(start+12, 4)) / 1e6
	dcFilterFlag := r.binary(start+16, 4)
	dcFilterFreq := r.ieee32(start + 20)
	preampPathCode := r.binary(start+24, 4)
	testOscillatorCode := r.binary(start+28, 4)

	if r.err != nil {
		return nil, r.err
	}

	preampPath, err := lookupPreampPath(preampPathCode)
	if err != nil {
		return nil, err
	}

	testOscillator, err := lookupTestOscillatorSignalType(testOscillatorCode)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"fairfield_test_analysis_code":          fairfieldTest,
		"first_test_oscillator_attenuation":     firstTest,
		"second_test_oscillator_attenuation":    secondTest,
		"start_delay":                            startDelay,
		"dc_filter_flag":                         dcFilterFlag,
		"dc_filter_frequency":                    dcFilterFreq,
		"preamp_path":                            preampPath,
		"test_oscillator_signal_type":            testOscillator,
	}, nil
}

func readTraceExtensionBlock9(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	signalTypeCode := r.binary(start, 4)
	freq1 := float64(r.binary(start+4, 4)) / 1e3
	freq2 := float64(r.binary(start+8, 4)) / 1e3
	amp1 := r.binary(start+12, 4)
	amp2 := r.binary(start+16, 4)
	dutyCycle := r.ieee32(start + 20)
	activeDuration := float64(r.binary(start+24, 4)) / 1e6
	activationTime := float64(r.binary(start+28, 4)) / 1e6

	if r.err != nil {
		return nil, r.err
	}

	signalType, err := lookupTestSignalType(signalTypeCode)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"test_signal_generator_signal_type":             signalType,
		"test_signal_generator_frequency_1":              freq1,
		"test_signal_generator_frequency_2":              freq2,
		"test_signal_generator_amplitude_1":              amp1,
		"test_signal_generator_amplitude_2":              amp2,
		"test_signal_generator_duty_cycle_percentage":    dutyCycle,
		"test_signal_generator_active_duration":          activeDuration,
		"test_signal_generator_activation_time":          activationTime,
	}, nil
}

func readTraceExtensionBlock10(source io.ReaderAt, start int64) (map[string]any, error) {
	r := &fieldReader{source: source}

	block := map[string]any{
		"test_signal_generator_idle_level":   r.binary(start, 4),
		"test_signal_generator_active_level": r.binary(start+4, 4),
		"test_signal_generator_pattern_1":    r.binary(start+8, 4),
		"test_signal_generator_pattern_2":    r.binary(start+12, 4),
	}

	return block, r.err
}
