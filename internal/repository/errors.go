// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow the service layer to tell
// apart the failure scenarios it reports to callers without depending on
// the MySQL driver.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the addressed row does not exist.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when the unique email index rejects an insert.
var ErrEmailExists = errors.New("email already exists")

// ErrAlreadyActivated is returned when an activation finds a password
// already set on the account.
var ErrAlreadyActivated = errors.New("already activated")

// ErrConflict is returned when a transaction lost a lock race (deadlock or
// lock wait timeout).  The operation can be retried as a whole.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers the repositories translate.
const (
	mysqlDuplicateEntry  = 1062
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

func mysqlCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

func isDuplicate(err error) bool { return mysqlCode(err) == mysqlDuplicateEntry }

func isLockConflict(err error) bool {
	switch mysqlCode(err) {
	case mysqlDeadlock, mysqlLockWaitTimeout:
		return true
	}
	return false
}
