package repositories

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
	"gorm.io/gorm"
	domainerrors "savingz.backend/internal/domain/errors"
)

const storeErrorsCallback = "savingz:store_errors"

// RegisterStoreErrors makes every statement report an unreachable store as
// ErrUpstreamUnavailable instead of a raw driver error.
func RegisterStoreErrors(db *gorm.DB) error {
	cb := db.Callback()
	regs := []error{
		cb.Create().After("gorm:create").Register(storeErrorsCallback, classifyStatement),
		cb.Query().After("gorm:query").Register(storeErrorsCallback, classifyStatement),
		cb.Update().After("gorm:update").Register(storeErrorsCallback, classifyStatement),
		cb.Delete().After("gorm:delete").Register(storeErrorsCallback, classifyStatement),
		cb.Row().After("gorm:row").Register(storeErrorsCallback, classifyStatement),
		cb.Raw().After("gorm:raw").Register(storeErrorsCallback, classifyStatement),
	}
	return errors.Join(regs...)
}

func classifyStatement(tx *gorm.DB) {
	if tx.Error != nil {
		tx.Error = classifyStoreError(tx.Error)
	}
}

// classifyStoreError wraps connection-class failures with
// ErrUpstreamUnavailable. Other errors are returned unchanged.
func classifyStoreError(err error) error {
	if err == nil || !isUnreachable(err) {
		return err
	}
	return domainerrors.Upstream(err)
}

func isUnreachable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "08", "53":
			// connection exception, insufficient resources
			return true
		}
		switch pqErr.Code {
		case "57P01", "57P02", "57P03":
			return true
		}
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
