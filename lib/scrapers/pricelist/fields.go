package pricelist

import (
	"fmt"
	"refuel/lib/htmlutil"
	"refuel/lib/price"
	"refuel/lib/textutil"
	"regexp"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// source markup: "14.06. 12:34", the year is optional
var updatedRegex = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4})?.(\d{2}):(\d{2})`)

var priceUnavailableRegex = regexp.MustCompile(`[-]\.[-]{2}`)

// source markup: "1.78<sup>9</sup>"
var priceRegex = regexp.MustCompile(`\b(\d)\.(\d{2})\b(?s:.+)\b(\d)\b`)

func selectOne(item *goquery.Selection, field, selector string) (*goquery.Selection, error) {
	sel := item.Find(selector)
	if sel.Length() == 0 {
		return nil, &SelectError{
			Field:    field,
			Selector: selector,
			Html:     htmlutil.OuterHTML(item),
		}
	}
	return sel.First(), nil
}

func parseText(item *goquery.Selection, field, selector string) (string, error) {
	sel, err := selectOne(item, field, selector)
	if err != nil {
		return "", err
	}
	raw := htmlutil.GetText(sel.Get(0))
	text, ok := textutil.FirstText(raw)
	if !ok {
		return "", &RegexMismatchError{
			Field:   field,
			Pattern: textutil.FirstTextPattern(),
			Text:    raw,
		}
	}
	return text, nil
}

// resolveYear picks the year for a timestamp that was shown without one, it is the
// current year unless that would put the timestamp more than a day into the future,
// which happens when a listing from december is read in january.
func resolveYear(now time.Time, month time.Month, day, hour, minute int) int {
	year := now.Year()
	candidate := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
	if candidate.After(now.Add(time.Hour * 24)) {
		return year - 1
	}
	return year
}

func atoi(field, text string) (int, error) {
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, &ConversionError{Field: field, Text: text, Err: err}
	}
	return value, nil
}

func parseUpdated(item *goquery.Selection, now time.Time) (time.Time, error) {
	sel, err := selectOne(item, "updated", selectorUpdated)
	if err != nil {
		return time.Time{}, err
	}
	text := sel.Text()
	if textutil.IsBlank(text) {
		return time.Time{}, &InvalidUpdatedError{Text: text}
	}

	groups := updatedRegex.FindStringSubmatch(text)
	if groups == nil {
		return time.Time{}, &RegexMismatchError{
			Field:   "updated",
			Pattern: updatedRegex.String(),
			Text:    text,
		}
	}

	day, err := atoi("updated", groups[1])
	if err != nil {
		return time.Time{}, err
	}
	monthNum, err := atoi("updated", groups[2])
	if err != nil {
		return time.Time{}, err
	}
	hour, err := atoi("updated", groups[4])
	if err != nil {
		return time.Time{}, err
	}
	minute, err := atoi("updated", groups[5])
	if err != nil {
		return time.Time{}, err
	}
	month := time.Month(monthNum)

	var year int
	if groups[3] != "" {
		year, err = atoi("updated", groups[3])
		if err != nil {
			return time.Time{}, err
		}
	} else {
		year = resolveYear(now, month, day, hour, minute)
	}

	// the timestamp is shown in the local time of the source
	updated := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
	if updated.Month() != month || updated.Day() != day ||
		updated.Hour() != hour || updated.Minute() != minute {
		return time.Time{}, &ConversionError{
			Field: "updated",
			Text:  groups[0],
			Err:   fmt.Errorf("not a valid date"),
		}
	}
	return updated.UTC(), nil
}

func parseDigits(text string) (uint64, error) {
	value, err := strconv.ParseUint(text, 10, 8)
	if err != nil {
		return 0, &ConversionError{Field: "price", Text: text, Err: err}
	}
	return value, nil
}

func parsePrice(item *goquery.Selection) (price.Display, error) {
	sel, err := selectOne(item, "price", selectorPrice)
	if err != nil {
		return price.Display{}, err
	}
	inner := htmlutil.InnerHTML(sel)

	if priceUnavailableRegex.MatchString(inner) {
		return price.Display{}, &InvalidPriceError{Text: inner}
	}

	groups := priceRegex.FindStringSubmatch(inner)
	if groups == nil {
		return price.Display{}, &RegexMismatchError{
			Field:   "price",
			Pattern: priceRegex.String(),
			Text:    inner,
		}
	}

	major, err := parseDigits(groups[1])
	if err != nil {
		return price.Display{}, err
	}
	minor, err := parseDigits(groups[2])
	if err != nil {
		return price.Display{}, err
	}
	subMinor, err := parseDigits(groups[3])
	if err != nil {
		return price.Display{}, err
	}

	// the regex bounds the digit count, a range error here is a parsing bug
	return price.Parse(major, minor, subMinor)
}
