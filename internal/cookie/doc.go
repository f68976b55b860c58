// doc.go — Package documentation for cookie import/list validation.

// Package cookie validates and normalizes cookie records before they reach
// the driver (spec §4.H cookieImport/cookieList), and audit-logs the
// outcome via internal/audit.
package cookie
