package telemetry

import (
	"fmt"
)

// API is how components report what happened to them. Components never log
// directly so tests can assert on reports through RecordingAPI.
type API interface {
	// ReportBroken reports a component that broke in a way someone has to fix.
	//
	// `id` names the broken component, not the exact line that failed: an item of
	// the price list with an unreadable price is `pricelist.extract-item`, with the
	// error and item index passed as params.
	//
	// ids are lowercase, underscores separate words of a component and dashes
	// separate a component from one of its operations.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something odd that is not broken yet, like an upstream
	// error status. `id` follows the rules of ReportBroken.
	ReportWarning(id string, params ...any)

	// ReportDebug reports details only useful while debugging, like records that
	// were skipped on purpose.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the value of a counter at this point in time.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every report with a namespace, scopes nest.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) qualify(id string) string {
	return fmt.Sprintf("%s.%s", s.namespace, id)
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(s.qualify(id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(s.qualify(id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(s.qualify(id), count)
}
