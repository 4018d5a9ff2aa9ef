package vql

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"www.velocidex.com/golang/pstotal/json"
	"www.velocidex.com/golang/vfilter"
)

// RunQuery evaluates each statement in the query and writes every
// row as a line of JSON.
func RunQuery(ctx context.Context,
	scope vfilter.Scope, query string, out io.Writer) error {
	multi_vql, err := vfilter.MultiParse(query)
	if err != nil {
		return errors.Wrap(err, "RunQuery")
	}

	for _, vql := range multi_vql {
		for row := range vql.Eval(ctx, scope) {
			err := json.WriteJsonl(out, row)
			if err != nil {
				return err
			}
		}
	}

	return nil
}
