package utils

import (
	"runtime"

	"www.velocidex.com/golang/vfilter"
)

// RecoverVQL logs a panic in a plugin goroutine to the scope so a
// bad record does not take the whole query down.
func RecoverVQL(scope vfilter.Scope) {
	r := recover()
	if r != nil {
		scope.Log("PANIC: %v\n", r)
		buffer := make([]byte, 4096)
		n := runtime.Stack(buffer, false /* all */)
		scope.Log("%s", buffer[:n])
	}
}
