package document

import "fmt"

// FetchError is returned when a document could not be retrieved over the network
// or the response was not a text document.
type FetchError struct {
	Url    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s (status %d): %s", e.Url, e.Status, e.Err.Error())
	}
	return fmt.Sprintf("fetch %s: %s", e.Url, e.Err.Error())
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// LoadError is returned when a snapshot could not be read from disk.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s", e.Path, e.Err.Error())
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
