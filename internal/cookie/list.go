// list.go — cookieList passthrough (spec §4.H cookieList).
package cookie

import (
	"context"

	"github.com/gasoline-dev/gasoline-broker/internal/driver"
)

// List returns every cookie the driver currently holds. Listing has no
// validation surface of its own; the rules in this package apply only to
// records being imported.
func List(ctx context.Context, drv driver.Driver) ([]driver.Cookie, error) {
	return drv.ListCookies(ctx)
}
