package param

import "context"

// Fetcher reads a single secret parameter by path.
type Fetcher interface {
	Fetch(context.Context, string) (string, error)
}
