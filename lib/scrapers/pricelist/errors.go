package pricelist

import (
	"errors"
	"fmt"
)

// ErrListNotFound means the document does not contain the price list container
// at all, the markup of the source most likely changed.
var ErrListNotFound = errors.New("price list not found")

// SelectError is returned when a required node of an item is missing.
type SelectError struct {
	Field    string
	Selector string
	Html     string
}

func (e *SelectError) Error() string {
	return fmt.Sprintf("%s: no node matches selector '%s' in:\n%s", e.Field, e.Selector, e.Html)
}

// RegexMismatchError is returned when the text of a node does not have the expected format.
type RegexMismatchError struct {
	Field   string
	Pattern string
	Text    string
}

func (e *RegexMismatchError) Error() string {
	return fmt.Sprintf("%s: '%s' does not match /%s/", e.Field, e.Text, e.Pattern)
}

// InvalidPriceError marks a price the source explicitly lists as unavailable.
type InvalidPriceError struct {
	Text string
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("price: unavailable placeholder '%s'", e.Text)
}

// InvalidUpdatedError marks an item the source has no update timestamp for yet.
type InvalidUpdatedError struct {
	Text string
}

func (e *InvalidUpdatedError) Error() string {
	return fmt.Sprintf("updated: no timestamp given '%s'", e.Text)
}

// ConversionError is returned when matched digits cannot be turned into numbers or dates.
type ConversionError struct {
	Field string
	Text  string
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s: convert '%s': %s", e.Field, e.Text, e.Err.Error())
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// IsBenign reports whether err only means that the source has no data for an item yet.
func IsBenign(err error) bool {
	var invalidPrice *InvalidPriceError
	var invalidUpdated *InvalidUpdatedError
	return errors.As(err, &invalidPrice) || errors.As(err, &invalidUpdated)
}
