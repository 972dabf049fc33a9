package api

// StressorResult contains the outcome of one supervised stressor worker
type StressorResult struct {
	Stressor string `json:"stressor"`
	ExitCode int    `json:"exit_code"`

	Ops        int64 `json:"ops"`
	WallMillis int64 `json:"wall_millis"`

	Restarts int64 `json:"restarts"`
	Segvs    int64 `json:"segvs"`
	Buses    int64 `json:"buses"`
	Ooms     int64 `json:"ooms"`

	OomKilled bool `json:"oom_killed"`
	GaveUp    bool `json:"gave_up"`
}

// Failed reports whether the worker ended in a state the caller should
// treat as a failed run.
func (r *StressorResult) Failed() bool {
	return r.ExitCode != 0 || r.GaveUp
}
