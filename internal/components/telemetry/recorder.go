package telemetry

import "sync"

type Report struct {
	ID     string
	Params []any
}

// RecordingAPI keeps every report in memory, it is meant for asserting
// on the reports a component makes in tests.
type RecordingAPI struct {
	lock     sync.Mutex
	Broken   []Report
	Warnings []Report
	Debug    []Report
	Counts   map[string]int64
}

func NewRecordingAPI() *RecordingAPI {
	return &RecordingAPI{Counts: map[string]int64{}}
}

func (r *RecordingAPI) ReportBroken(id string, params ...any) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Broken = append(r.Broken, Report{ID: id, Params: params})
}

func (r *RecordingAPI) ReportWarning(id string, params ...any) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Warnings = append(r.Warnings, Report{ID: id, Params: params})
}

func (r *RecordingAPI) ReportDebug(msg string, params ...any) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Debug = append(r.Debug, Report{ID: msg, Params: params})
}

func (r *RecordingAPI) ReportCount(id string, count int64) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.Counts[id] = count
}
