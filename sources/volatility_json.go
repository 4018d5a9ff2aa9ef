package sources

import (
	"context"
	"os"

	"github.com/Velocidex/json"
	"github.com/pkg/errors"
)

type jsonReader struct {
	scan_file string
	list_file string
}

func (self *jsonReader) ReadScanGrid(ctx context.Context) (*Grid, error) {
	return readJSONGrid(self.scan_file)
}

func (self *jsonReader) ReadListGrid(ctx context.Context) (*Grid, error) {
	return readJSONGrid(self.list_file)
}

// Kernel addresses do not fit in a float64 so numbers must be
// decoded as json.Number.
func readJSONGrid(filename string) (*Grid, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "readJSONGrid")
	}
	defer fd.Close()

	decoder := json.NewDecoder(fd)
	decoder.UseNumber()

	grid := &Grid{}
	err = decoder.Decode(grid)
	if err != nil {
		return nil, errors.Wrapf(err, "readJSONGrid: %v", filename)
	}

	return grid, nil
}

// Reads psscan and pslist results saved with --output=json
func NewVolatilityJSONSource(scan_file, list_file string) *GridSource {
	return &GridSource{
		reader: &jsonReader{
			scan_file: scan_file,
			list_file: list_file,
		},
	}
}
