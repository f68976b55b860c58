// import.go — strict/non-strict import semantics and audit logging
// (spec §4.H cookieImport).
package cookie

import (
	"context"
	"fmt"

	"github.com/gasoline-dev/gasoline-broker/internal/audit"
	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// Import validates records, then imports the accepted ones via drv unless
// strict mode rejects the whole batch first. In non-strict mode the
// returned counts always sum to len(records); in strict mode, any rejection
// aborts before the driver is called at all — zero side effects on failure.
func Import(ctx context.Context, drv driver.Driver, trail *audit.AuditTrail, sessionID string, records []Record, strict bool) (imported int, rejected []Rejection, err error) {
	accepted, rejected := Normalize(records)

	if strict && len(rejected) > 0 {
		logOutcome(trail, sessionID, len(records), 0, rejected, false)
		return 0, rejected, gaserr.New(gaserr.KindInvalidInput, fmt.Sprintf("%d of %d cookie records failed validation", len(rejected), len(records)))
	}

	if len(accepted) > 0 {
		if importErr := drv.ImportCookies(ctx, accepted); importErr != nil {
			logOutcome(trail, sessionID, len(records), 0, rejected, false)
			return 0, rejected, gaserr.Wrap(gaserr.KindInvalidInput, "driver rejected cookie import", importErr)
		}
	}

	logOutcome(trail, sessionID, len(records), len(accepted), rejected, true)
	return len(accepted), rejected, nil
}

func logOutcome(trail *audit.AuditTrail, sessionID string, total, imported int, rejected []Rejection, success bool) {
	if trail == nil {
		return
	}
	trail.Record(audit.AuditEntry{
		SessionID: sessionID,
		ToolName:  "cookieImport",
		Parameters: fmt.Sprintf("total=%d imported=%d rejected=%d", total, imported, len(rejected)),
		Success:   success,
	})
}
