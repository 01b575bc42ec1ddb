package override

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
)

// ReadYAML reads a YAML sequence of records.
//
//	- path: items.size
//	  value: "2"
//	- path: items.data[1].target
//	  ref: 42
func ReadYAML(r io.Reader) ([]Record, error) {
	d, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := yaml.Unmarshal(d, &recs); err != nil {
		return nil, fmt.Errorf("could not decode override records: %w", err)
	}
	for i := range recs {
		if recs[i].Path == "" && recs[i].Value == "" && recs[i].Ref == nil {
			return nil, fmt.Errorf("record %d is empty", i)
		}
	}
	return recs, nil
}

func WriteYAML(w io.Writer, recs []Record) error {
	if len(recs) == 0 {
		_, err := io.WriteString(w, "[]\n")
		return err
	}
	d, err := yaml.Marshal(recs)
	if err != nil {
		return err
	}
	_, err = w.Write(d)
	return err
}
