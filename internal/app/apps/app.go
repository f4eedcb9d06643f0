package apps

import "context"

// App is a runnable TypeSpeed application.
type App interface {
	Run(ctx context.Context, args []string) error
}
