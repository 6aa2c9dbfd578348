// Package route parses dashboard deep links such as /apps/kea/7?daemon=dhcp6.
package route

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// DaemonParam is the query parameter selecting the active daemon tab.
const DaemonParam = "daemon"

// ErrInvalidRoute is returned when a deep link does not address a Kea app.
var ErrInvalidRoute = errors.New("invalid route")

// Route is a read-only snapshot of the current location.
type Route struct {
	AppType string
	AppID   int64
	Query   url.Values
}

// Parse reads a deep link of the form /apps/<type>/<id>[?query].
func Parse(raw string) (Route, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Route{}, fmt.Errorf("%w: %v", ErrInvalidRoute, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 3 || parts[0] != "apps" || parts[1] == "" {
		return Route{}, fmt.Errorf("%w: %q does not match /apps/<type>/<id>", ErrInvalidRoute, raw)
	}
	id, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || id <= 0 {
		return Route{}, fmt.Errorf("%w: bad app id %q", ErrInvalidRoute, parts[2])
	}

	return Route{AppType: parts[1], AppID: id, Query: u.Query()}, nil
}

// Daemon returns the daemon query parameter or "" when absent.
func (r Route) Daemon() string {
	return r.Query.Get(DaemonParam)
}

// WithDaemon returns a copy of the route selecting the given daemon tab.
func (r Route) WithDaemon(name string) Route {
	query := make(url.Values, len(r.Query)+1)
	for k, v := range r.Query {
		query[k] = append([]string(nil), v...)
	}
	if name == "" {
		query.Del(DaemonParam)
	} else {
		query.Set(DaemonParam, name)
	}
	r.Query = query
	return r
}

// String renders the canonical deep link.
func (r Route) String() string {
	u := url.URL{
		Path:     fmt.Sprintf("/apps/%s/%d", r.AppType, r.AppID),
		RawQuery: r.Query.Encode(),
	}
	return u.String()
}
