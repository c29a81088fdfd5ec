package trace

import "github.com/fairfield-nodal/rg16/errs"

var sourceOfFinalShotInfoNames = map[uint64]string{
	0: "undefined",
	1: "preplan",
	2: "as shot",
	3: "post processed",
}

var energySourceTypeNames = map[uint64]string{
	0: "undefined",
	1: "vibroseis",
	2: "dynamite",
	3: "air gun",
}

var traceClippedFlagNames = map[uint64]string{
	0: "not clipped",
	1: "digital clip detected",
	2: "analog clip detected",
}

var recordTypeCodeNames = map[uint64]string{
	2: "test data record",
	8: "normal seismic data record",
}

var shotStatusFlagNames = map[uint64]string{
	0: "normal",
	1: "bad-operator specified",
	2: "bad-failed to QC test",
}

var sourceOfFinalReceiverInfoNames = map[uint64]string{
	1:  "preplan",
	2:  "as laid (no navigation sensor)",
	3:  "as laid (HiPAP only)",
	4:  "as laid (HiPAP and INS)",
	5:  "as laid (HiPAP and DVL)",
	6:  "as laid (HiPAP, DVL and INS)",
	7:  "post processed (HiPAP only)",
	8:  "post processed (HiPAP and INS)",
	9:  "post processed (HiPAP and DVL)",
	10: "post processed (HiPAP, DVL and INS)",
	11: "first break analysis",
}

var preampPathNames = map[uint64]string{
	0:  "external input selected",
	1:  "simulated data selected",
	2:  "pre-amp input shorted to ground",
	3:  "test oscillator with sensors",
	4:  "test oscillator without sensors",
	5:  "common mode test oscillator with sensors",
	6:  "common mode test oscillator without sensors",
	7:  "test oscillator on positive sensors with neg sensor grounded",
	8:  "test oscillator on negative sensors with pos sensor grounded",
	9:  "test oscillator on positive PA input with neg PA input ground",
	10: "test oscillator on negative PA input, with pos PA input ground",
	11: "test oscillator on positive PA input, with neg PA input ground, no sensors",
	12: "test oscillator on negative PA input, with pos PA input ground, no sensors",
}

var testOscillatorSignalTypeNames = map[uint64]string{
	0: "test oscillator path open",
	1: "test signal selected",
	2: "DC reference selected",
	3: "test oscillator path grounded",
	4: "DC reference toggle selected",
}

var testSignalTypeNames = map[uint64]string{
	0:  "pattern is address ramp",
	1:  "pattern is RU address ramp",
	2:  "pattern is built from provided values",
	3:  "pattern is random numbers",
	4:  "pattern is a walking 1s",
	5:  "pattern is a walking 0s",
	6:  "test signal is a specified DC value",
	7:  "test signal is a pulse train with specified duty cycle",
	8:  "test signal is a sine wave",
	9:  "test signal is a dual tone sine",
	10: "test signal is an impulse",
	11: "test signal is a step function",
}

func lookupTraceEnum(table map[uint64]string, fieldName string, code uint64) (string, error) {
	name, ok := table[code]
	if !ok {
		return "", &errs.UnknownEnumCodeError{FieldName: fieldName, RawValue: code}
	}

	return name, nil
}

func lookupSourceOfFinalShotInfo(code uint64) (string, error) {
	return lookupTraceEnum(sourceOfFinalShotInfoNames, "source_of_final_shot_info", code)
}

func lookupEnergySourceType(code uint64) (string, error) {
	return lookupTraceEnum(energySourceTypeNames, "energy_source_type", code)
}

func lookupTraceClippedFlag(code uint64) (string, error) {
	return lookupTraceEnum(traceClippedFlagNames, "trace_clipped_flag", code)
}

func lookupRecordTypeCode(code uint64) (string, error) {
	return lookupTraceEnum(recordTypeCodeNames, "record_type_code", code)
}

func lookupShotStatusFlag(code uint64) (string, error) {
	return lookupTraceEnum(shotStatusFlagNames, "shot_status_flag", code)
}

func lookupSourceOfFinalReceiverInfo(code uint64) (string, error) {
	return lookupTraceEnum(sourceOfFinalReceiverInfoNames, "source_of_final_receiver_info", code)
}

func lookupPreampPath(code uint64) (string, error) {
	return lookupTraceEnum(preampPathNames, "preamp_path", code)
}

func lookupTestOscillatorSignalType(code uint64) (string, error) {
	return lookupTraceEnum(testOscillatorSignalTypeNames, "test_oscillator_signal_type", code)
}

func lookupTestSignalType(code uint64) (string, error) {
	return lookupTraceEnum(testSignalTypeNames, "test_signal_type", code)
}
