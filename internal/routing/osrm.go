package routing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/ftth-cli/internal/design"
	"github.com/sells-group/ftth-cli/internal/geo"
	"github.com/sells-group/ftth-cli/internal/resilience"
)

// Routing errors.
var (
	ErrDisabled = eris.New("routing: no router configured")
	ErrNoRoute  = eris.New("routing: no route found")
)

const (
	defaultBaseURL = "https://router.project-osrm.org"
	defaultProfile = "driving"
	maxBodyBytes   = 8 << 20
)

type osrmResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64         `json:"distance"`
		Geometry json.RawMessage `json:"geometry"`
	} `json:"routes"`
}

// Option configures an OSRMClient.
type Option func(*OSRMClient)

// WithBaseURL points the client at another OSRM deployment.
func WithBaseURL(u string) Option {
	return func(c *OSRMClient) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithProfile selects the OSRM profile (driving, walking, cycling).
func WithProfile(p string) Option {
	return func(c *OSRMClient) {
		if p != "" {
			c.profile = p
		}
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *OSRMClient) { c.httpClient = hc }
}

// WithRateLimit sets the request rate per second.
func WithRateLimit(rps float64) Option {
	return func(c *OSRMClient) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLimiter sets the rate limiter directly.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *OSRMClient) { c.limiter = l }
}

// WithRetryPolicy sets the retry policy for each lookup.
func WithRetryPolicy(p resilience.RetryPolicy) Option {
	return func(c *OSRMClient) { c.retry = p }
}

// WithBreaker sets the circuit breaker shared by all lookups.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *OSRMClient) { c.breaker = b }
}

// WithLogger sets the client logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *OSRMClient) {
		if log != nil {
			c.log = log
		}
	}
}

// OSRMClient queries an OSRM route service.
type OSRMClient struct {
	baseURL    string
	profile    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryPolicy
	breaker    *resilience.Breaker
	log        *zap.Logger
}

// NewOSRMClient creates a client. Defaults: public OSRM demo server, driving
// profile, 1 request/s, two attempts, breaker opening after 5 failures.
func NewOSRMClient(opts ...Option) *OSRMClient {
	c := &OSRMClient{
		baseURL:    defaultBaseURL,
		profile:    defaultProfile,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(1, 1),
		retry:      resilience.DefaultRetryPolicy(),
		log:        zap.L(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("component", "osrm"))
	if c.breaker == nil {
		c.breaker = resilience.NewBreaker(resilience.BreakerConfig{
			OnStateChange: func(from, to resilience.State) {
				c.log.Info("osrm: circuit state changed",
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		})
	}
	if c.retry.OnRetry == nil {
		c.retry.OnRetry = resilience.LogRetries(c.log, "osrm route")
	}
	return c
}

// Route implements Router.
func (c *OSRMClient) Route(ctx context.Context, from, to design.LatLon) ([]design.LatLon, error) {
	return resilience.Call(ctx, c.breaker, func(ctx context.Context) ([]design.LatLon, error) {
		return resilience.Retry(ctx, c.retry, func(ctx context.Context) ([]design.LatLon, error) {
			return c.route(ctx, from, to)
		})
	})
}

// routeURL builds {base}/route/v1/{profile}/{lon},{lat};{lon},{lat}.
func (c *OSRMClient) routeURL(from, to design.LatLon) string {
	coord := func(ll design.LatLon) string {
		xy := ll.XY()
		return strconv.FormatFloat(xy[0], 'f', -1, 64) + "," + strconv.FormatFloat(xy[1], 'f', -1, 64)
	}
	return c.baseURL + "/route/v1/" + c.profile + "/" + coord(from) + ";" + coord(to) +
		"?overview=full&geometries=geojson"
}

func (c *OSRMClient) route(ctx context.Context, from, to design.LatLon) ([]design.LatLon, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "osrm: rate limit")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.routeURL(from, to), nil)
	if err != nil {
		return nil, eris.Wrap(err, "osrm: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "osrm: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("osrm: returned status %d", resp.StatusCode)
		if resilience.IsTransientStatus(resp.StatusCode) {
			return nil, resilience.Transient(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "osrm: read body")
	}

	var parsed osrmResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, eris.Wrap(err, "osrm: parse response")
	}
	if parsed.Code != "Ok" || len(parsed.Routes) == 0 {
		return nil, eris.Wrapf(ErrNoRoute, "code %q: %s", parsed.Code, parsed.Message)
	}

	return decodeLine(parsed.Routes[0].Geometry)
}

// decodeLine converts a GeoJSON LineString into latitude-first points.
func decodeLine(raw json.RawMessage) ([]design.LatLon, error) {
	var g geom.T
	if err := geojson.Unmarshal(raw, &g); err != nil {
		return nil, eris.Wrap(err, "osrm: decode geometry")
	}
	ls, ok := g.(*geom.LineString)
	if !ok {
		return nil, eris.Wrapf(ErrNoRoute, "geometry is %T", g)
	}

	out := make([]design.LatLon, 0, ls.NumCoords())
	for i := 0; i < ls.NumCoords(); i++ {
		c := ls.Coord(i)
		out = append(out, geo.FromXY(c.X(), c.Y()))
	}
	if len(out) < 2 {
		return nil, ErrNoRoute
	}
	return out, nil
}
