package json

import (
	"io"

	"github.com/Velocidex/json"
)

// Write each row as a single line of JSON.
func WriteJsonl(out io.Writer, rows ...interface{}) error {
	options := NewEncOpts()
	for _, row := range rows {
		serialized, err := json.MarshalWithOptions(row, options)
		if err != nil {
			return err
		}
		serialized = append(serialized, '\n')
		_, err = out.Write(serialized)
		if err != nil {
			return err
		}
	}
	return nil
}

func Unmarshal(b []byte, v interface{}) error {
	return json.Unmarshal(b, v)
}
