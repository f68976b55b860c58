package session

import "github.com/gasoline-dev/gasoline-broker/internal/telemetry"

func newRequestID() string {
	return telemetry.NewRequestID()
}
