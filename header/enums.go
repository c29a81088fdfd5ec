package header

import "github.com/fairfield-nodal/rg16/errs"

var clockStopMethodNames = map[uint64]string{
	0: "normal",
	1: "storage full",
	2: "power loss",
	3: "reboot",
}

var frequencyDriftNames = map[uint64]string{
	0: "not within specification",
	1: "within specification",
}

var oscillatorTypeNames = map[uint64]string{
	0: "control board",
	1: "atomic",
	2: "ovenized",
	3: "double ovenized",
	4: "disciplined",
}

var dataCollectionMethodNames = map[uint64]string{
	0: "normal",
	1: "continuous",
	2: "shot sliced with guard band",
}

var dataDecimationNames = map[uint64]string{
	0: "not decimated",
	1: "decimated data",
}

func lookupEnum(table map[uint64]string, fieldName string, code uint64) (string, error) {
	name, ok := table[code]
	if !ok {
		return "", &errs.UnknownEnumCodeError{FieldName: fieldName, RawValue: code}
	}

	return name, nil
}

func lookupClockStopMethod(code uint64) (string, error) {
	return lookupEnum(clockStopMethodNames, "clock_stop_method", code)
}

func lookupFrequencyDrift(code uint64) (string, error) {
	return lookupEnum(frequencyDriftNames, "frequency_drift", code)
}

func lookupOscillatorType(code uint64) (string, error) {
	return lookupEnum(oscillatorTypeNames, "oscillator_type", code)
}

func lookupDataCollectionMethod(code uint64) (string, error) {
	return lookupEnum(dataCollectionMethodNames, "data_collection_method", code)
}

func lookupDataDecimation(code uint64) (string, error) {
	return lookupEnum(dataDecimationNames, "data_decimation", code)
}
