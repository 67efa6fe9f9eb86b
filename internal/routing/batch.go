package routing

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sells-group/ftth-cli/internal/design"
)

// RoutedLink pairs a topology link with its resolved path.
type RoutedLink struct {
	design.Link
	Path Path `json:"path" yaml:"path"`
}

// RouteLinks resolves every link with up to concurrency lookups in flight.
// Results keep the order of links. Individual failures become straight
// lines, so the batch itself never fails.
func RouteLinks(ctx context.Context, f *Fallback, links []design.Link, concurrency int) []RoutedLink {
	if len(links) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}

	out := make([]RoutedLink, len(links))
	var eg errgroup.Group
	eg.SetLimit(concurrency)

	for i, l := range links {
		i, l := i, l
		eg.Go(func() error {
			out[i] = RoutedLink{Link: l, Path: f.Path(ctx, l.From.Position(), l.To.Position())}
			return nil
		})
	}
	_ = eg.Wait()
	return out
}
