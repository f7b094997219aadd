package cli

// ExitError carries a process exit code out of a command. An empty Message
// means the command already reported the failure.
type ExitError struct {
	Code    int
	Message string
}

func (e ExitError) Error() string {
	return e.Message
}
