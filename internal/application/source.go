package application

import "context"

// CommandRequest is one user command pulled from a source. Reply, when set,
// receives the final answer or the error that aborted the command.
type CommandRequest struct {
	Text  string
	Reply func(answer string, err error)
}

// CommandSource yields user commands one at a time. NextCommand returns
// io.EOF once the source is exhausted.
type CommandSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextCommand(ctx context.Context) (*CommandRequest, error)
	Name() string
}
