package core

import (
	"encoding/json"
	"io"
)

// MarshalResult pretty-prints a result as JSON with the public field names.
func MarshalResult(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// UnmarshalResult decodes result JSON, useful for ingestion tests.
func UnmarshalResult(r io.Reader) (Result, error) {
	var res Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return Result{}, err
	}
	return res, nil
}
