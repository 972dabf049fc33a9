package api

import "time"

// MsgType is a message type for streaming run progress
type MsgType string

// Streaming message type constants
const (
	StartRunMsg       MsgType = "run_start"
	StartStressorMsg  MsgType = "stressor_start"
	FinishStressorMsg MsgType = "stressor_finish"
	FinishRunMsg      MsgType = "run_finish"
)

// Field size constraints for streaming
const (
	MaxFieldHeight = 40
	MaxFieldWidth  = 80
)

// Header is the common header for all streaming progress messages
type Header struct {
	RunUuid string  `json:"run_uuid"`
	MsgType MsgType `json:"msg_type"`
}

// StartRun message sent when a stress run begins
type StartRun struct {
	Header
	SystemInfo  string `json:"system_info"`
	StartedTime string `json:"started_time"`
}

// StartStressor message sent when a supervised stressor begins
type StartStressor struct {
	Header
	Stressor string `json:"stressor"`
	Workers  int    `json:"workers"`
}

// FinishStressor message sent when a supervised stressor completes
type FinishStressor struct {
	Header
	Stressor string          `json:"stressor"`
	Result   *StressorResult `json:"result"`
}

// FinishRun message sent when a stress run completes
type FinishRun struct {
	Header
	ErrorMessage  *string `json:"error_message"`
	InternalError bool    `json:"internal_error"`
}

// Helper function to create a header
func NewHeader(runUuid string, msgType MsgType) Header {
	return Header{
		RunUuid: runUuid,
		MsgType: msgType,
	}
}

// Helper functions to create specific streaming message types
func NewStartRun(runUuid, systemInfo string) StartRun {
	return StartRun{
		Header:      NewHeader(runUuid, StartRunMsg),
		SystemInfo:  systemInfo,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewStartStressor(runUuid, stressor string, workers int) StartStressor {
	return StartStressor{
		Header:   NewHeader(runUuid, StartStressorMsg),
		Stressor: stressor,
		Workers:  workers,
	}
}

func NewFinishStressor(runUuid, stressor string, result *StressorResult) FinishStressor {
	return FinishStressor{
		Header:   NewHeader(runUuid, FinishStressorMsg),
		Stressor: stressor,
		Result:   result,
	}
}

func NewFinishRun(runUuid string, errMsg *string, internal bool) FinishRun {
	return FinishRun{
		Header:        NewHeader(runUuid, FinishRunMsg),
		ErrorMessage:  errMsg,
		InternalError: internal,
	}
}
