package cli

import "fmt"

// Exit codes are a contract with automation wrapping the CLI.
const (
	ExitOK       = 0
	ExitFindings = 1
	ExitConfig   = 2
	ExitInit     = 3
	ExitInternal = 4
)

// ExitError carries the process exit code for command-specific failures.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("exit with code %d", e.Code)
	}
	return e.Message
}
