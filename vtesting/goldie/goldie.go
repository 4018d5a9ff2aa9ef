package goldie

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func Assert(t *testing.T, filename string, golden []byte) {
	t.Helper()

	g := goldie.New(t, goldie.WithFixtureDir("fixtures"))
	g.Assert(t, filename, golden)
}
