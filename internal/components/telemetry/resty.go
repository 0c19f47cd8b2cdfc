package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	report_resty_request  = "resty.request"
	report_resty_response = "resty.response"
	report_resty_status   = "resty.status"
)

type restyReporter struct {
	tel     API
	counter *atomic.Uint64
}

// InstrumentResty reports the requests made by the client to `tel`. Every
// request and response is a debug report, responses with an error status are
// reported as warnings and transport failures as broken.
func InstrumentResty(client *resty.Client, tel API) {
	r := restyReporter{tel: tel, counter: &atomic.Uint64{}}
	client.OnBeforeRequest(r.onBeforeRequest)
	client.OnAfterResponse(r.onAfterResponse)
	client.OnError(r.onError)
}

type requestInfoKey struct{}

type requestInfo struct {
	id uint64
	// only used for durations so it doesn't go through chrono
	started time.Time
}

func (r restyReporter) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	info := requestInfo{id: r.counter.Add(1), started: time.Now()}
	r.tel.ReportDebug(report_resty_request, info.id, req.Method, req.URL)
	req.SetContext(context.WithValue(req.Context(), requestInfoKey{}, info))
	return nil
}

func (r restyReporter) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	info, _ := res.Request.Context().Value(requestInfoKey{}).(requestInfo)
	elapsed := time.Since(info.started)

	r.tel.ReportDebug(report_resty_response, info.id, elapsed.String(), res.Status())
	if res.IsError() {
		r.tel.ReportWarning(report_resty_status, res.Request.Method, res.Request.URL, res.StatusCode())
	}
	return nil
}

func (r restyReporter) onError(req *resty.Request, err error) {
	info, ok := req.Context().Value(requestInfoKey{}).(requestInfo)
	if !ok {
		// failed before onBeforeRequest ran
		r.tel.ReportBroken(report_resty_response, err, req.Method, req.URL)
		return
	}
	r.tel.ReportBroken(report_resty_response, err, req.Method, req.URL, time.Since(info.started).String())
}
