package constants

var (
	VERSION = "0.1.0"

	// Environment variable holding the path to the config file.
	PSTOTAL_CONFIG = "PSTOTAL_CONFIG"

	// Appended to truncated command lines of processes whose real
	// arguments need a deeper analysis.
	COMMAND_LINE_NOTE = `\n (Run pstree to get command parameters)`

	NOT_AVAILABLE = "not available"
)
