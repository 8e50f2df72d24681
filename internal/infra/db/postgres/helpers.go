package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func isDuplicate(err error) bool {
	var pe *pq.Error
	return errors.As(err, &pe) && pe.Code == uniqueViolation
}

// storeErr wraps connectivity failures (network, bad conn, timeouts, server
// shutting down) in unavailable.
func storeErr(err, unavailable error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	var pe *pq.Error
	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr):
		return fmt.Errorf("%w: %v", unavailable, err)
	case errors.As(err, &pe) && (pe.Code.Class() == "08" || pe.Code.Class() == "57"):
		return fmt.Errorf("%w: %v", unavailable, err)
	}
	return err
}
