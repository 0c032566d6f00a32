package table

// reads table columns
const (
	colReadID                 = "read_id"
	colSignal                 = "signal"
	colChannel                = "channel"
	colWell                   = "well"
	colPoreType               = "pore_type"
	colCalibrationOffset      = "calibration_offset"
	colCalibrationScale       = "calibration_scale"
	colReadNumber             = "read_number"
	colStart                  = "start"
	colMedianBefore           = "median_before"
	colTrackedScalingScale    = "tracked_scaling_scale"
	colTrackedScalingShift    = "tracked_scaling_shift"
	colPredictedScalingScale  = "predicted_scaling_scale"
	colPredictedScalingShift  = "predicted_scaling_shift"
	colNumReadsSinceMuxChange = "num_reads_since_mux_change"
	colTimeSinceMuxChange     = "time_since_mux_change"
	colNumMinknowEvents       = "num_minknow_events"
	colEndReason              = "end_reason"
	colEndReasonForced        = "end_reason_forced"
	colRunInfo                = "run_info"
	colNumSamples             = "num_samples"
)

// run info table columns
const (
	colAcquisitionID         = "acquisition_id"
	colAcquisitionStartTime  = "acquisition_start_time"
	colAdcMax                = "adc_max"
	colAdcMin                = "adc_min"
	colContextTags           = "context_tags"
	colExperimentName        = "experiment_name"
	colFlowCellID            = "flow_cell_id"
	colFlowCellProductCode   = "flow_cell_product_code"
	colProtocolName          = "protocol_name"
	colProtocolRunID         = "protocol_run_id"
	colProtocolStartTime     = "protocol_start_time"
	colSampleID              = "sample_id"
	colSampleRate            = "sample_rate"
	colSequencingKit         = "sequencing_kit"
	colSequencerPosition     = "sequencer_position"
	colSequencerPositionType = "sequencer_position_type"
	colSoftware              = "software"
	colSystemName            = "system_name"
	colSystemType            = "system_type"
	colTrackingID            = "tracking_id"
)

// signal table columns; read_id and signal are shared with the reads table
const (
	colSamples = "samples"
)
