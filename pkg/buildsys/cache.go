package buildsys

import (
	"encoding/gob"
	"os"

	"github.com/rotisserie/eris"
)

// WriteOptionCache persists the configure options so later invocations pick
// them up without the user repeating KEY=VALUE arguments.
func WriteOptionCache(file string, options map[string]string) error {
	handle, err := os.Create(file)
	if err != nil {
		return eris.Wrapf(err, "failed to create %s", file)
	}
	defer handle.Close()

	return gob.NewEncoder(handle).Encode(options)
}

// ReadOptionCache returns the stored configure options. A missing cache file
// is not an error; it just yields an empty option set.
func ReadOptionCache(file string) (map[string]string, error) {
	handle, err := os.Open(file)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, eris.Wrapf(err, "failed to open %s", file)
	}
	defer handle.Close()

	var options map[string]string
	err = gob.NewDecoder(handle).Decode(&options)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to decode %s", file)
	}

	return options, nil
}
