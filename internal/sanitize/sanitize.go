// Package sanitize rejects input carrying printf-style format directives.
//
// It is a defence-in-depth filter applied before any handler runs; it does
// not replace bound query parameters in the store.
package sanitize

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
)

// ErrDisallowedFormat is returned when a value contains a format directive.
// The message is fixed so the offending input is never reflected back.
var ErrDisallowedFormat = errors.New("disallowed format specifier in input")

// formatRe matches a percent sign followed by one of the directive letters
// s n x d p i f, or a second percent sign.
var formatRe = regexp.MustCompile(`%[snxdpif%]`)

// String reports ErrDisallowedFormat if s contains a format directive.
func String(s string) error {
	if formatRe.MatchString(s) {
		return ErrDisallowedFormat
	}
	return nil
}

// Value walks a decoded JSON value (as produced by encoding/json into any)
// and checks every string, including object keys.  Numbers, booleans and
// null pass unchanged.  The input is never modified.
func Value(v any) error {
	switch t := v.(type) {
	case string:
		return String(t)
	case map[string]any:
		for k, child := range t {
			if err := String(k); err != nil {
				return err
			}
			if err := Value(child); err != nil {
				return err
			}
		}
	case []any:
		for _, child := range t {
			if err := Value(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// JSON decodes body and checks it with Value.  Numbers are kept as
// json.Number so large integers survive untouched.  A body that is not
// valid JSON is left for the handler's binder to reject.
func JSON(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return Value(v)
}

// Strings checks every element of a multi-valued parameter set such as
// url.Values.
func Strings(values map[string][]string) error {
	for k, vs := range values {
		if err := String(k); err != nil {
			return err
		}
		for _, v := range vs {
			if err := String(v); err != nil {
				return err
			}
		}
	}
	return nil
}
