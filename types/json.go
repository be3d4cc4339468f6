package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	errJSONDecode      = fmt.Errorf("error decoding json")
	errJSONExtFnMatch  = fmt.Errorf("json extn mismatch")
	errJSONExtNotFound = fmt.Errorf("json extn not found")
)

type extn struct {
	Fn  string `json:"fn"`
	Arg string `json:"arg"`
}

type extValueJSON struct {
	Extn *extn `json:"__extn,omitempty"`
}

// unmarshalExtensionArg extracts the extension argument from JSON bytes.
func unmarshalExtensionArg(b []byte, extName string) (string, error) {
	// Check if it's a simple string
	if len(b) > 0 && b[0] == '"' {
		var arg string
		if err := json.Unmarshal(b, &arg); err != nil {
			return "", errors.Join(errJSONDecode, err)
		}
		return arg, nil
	}

	// Try __extn format first
	var res extValueJSON
	if err := json.Unmarshal(b, &res); err != nil {
		return "", errors.Join(errJSONDecode, err)
	}

	if res.Extn != nil {
		if res.Extn.Fn != extName {
			return "", errJSONExtFnMatch
		}
		return res.Extn.Arg, nil
	}

	// Try bare extn format
	var res2 extn
	if err := json.Unmarshal(b, &res2); err != nil {
		return "", errors.Join(errJSONDecode, err)
	}

	if res2.Fn == "" {
		return "", errJSONExtNotFound
	}
	if res2.Fn != extName {
		return "", errJSONExtFnMatch
	}
	return res2.Arg, nil
}

func unmarshalExtensionValue[T any](b []byte, extName string, parse func(string) (T, error)) (T, error) {
	var zeroT T

	arg, err := unmarshalExtensionArg(b, extName)
	if err != nil {
		return zeroT, err
	}

	v, err := parse(arg)
	if err != nil {
		return zeroT, err
	}

	return v, nil
}
