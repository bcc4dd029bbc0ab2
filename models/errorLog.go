package models

import (
	"context"
	"errors"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"github.com/mmdatafocus/inventory_backend/config"
	"github.com/mmdatafocus/inventory_backend/reconcile"
	"github.com/mmdatafocus/inventory_backend/utils"
	"gorm.io/gorm"
)

// ErrorLog keeps store failures for later inspection.
type ErrorLog struct {
	ID           int       `gorm:"primary_key" json:"id"`
	ErrorTime    time.Time `gorm:"index;not null" json:"error_time"`
	Function     string    `gorm:"size:100" json:"function"`
	ErrorMessage string    `gorm:"type:text;not null" json:"error_message"`
}

// ReportStoreFailure records err, first as an ErrorLog row, and when the store cannot take
// that either, as a line in the local error log file. It always asks the caller to reconnect.
func ReportStoreFailure(ctx context.Context, funcName string, err error) error {
	config.StoreFailures.Inc()
	logger := config.GetLogger()
	config.LogError(logger, "models", funcName, "store failure", nil, err)

	if writeErrorLog(ctx, funcName, err) == nil {
		return &utils.ConnectionError{Err: err, Reconnect: true}
	}

	fileLogger, closeFile, ferr := config.NewFileLogger(config.ErrorLogFile())
	if ferr != nil {
		config.LogError(logger, "models", funcName, "open error log file", config.ErrorLogFile(), ferr)
		return &utils.ConnectionError{Err: err, Reconnect: true}
	}
	fileLogger.WithField("funcName", funcName).Error(err.Error())
	_ = closeFile()
	return &utils.ConnectionError{Err: err, Reconnect: true}
}

func writeErrorLog(ctx context.Context, funcName string, err error) error {
	db := config.GetDB()
	if db == nil {
		return errors.New("db is nil")
	}
	logCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	row := ErrorLog{
		ErrorTime:    time.Now(),
		Function:     funcName,
		ErrorMessage: err.Error(),
	}
	return db.WithContext(logCtx).Create(&row).Error
}

// storeError sorts an error coming out of a store operation into the error taxonomy.
// Errors that are already classified pass through; anything unknown is a store failure.
func storeError(ctx context.Context, entity string, funcName string, err error) error {
	if err == nil {
		return nil
	}
	if isClassified(err) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return utils.ErrorRecordNotFound
	case isMissingReference(err):
		return utils.NewValidationError(foreignKeyColumn(err, entity), "the referenced record does not exist")
	case isForeignKeyViolation(err):
		config.DeleteBlocked.WithLabelValues(entity).Inc()
		return &utils.ReferenceError{Entity: entity}
	case isDuplicateKey(err):
		return &utils.UniqueError{Field: uniqueColumn(err, entity)}
	case errors.Is(err, context.Canceled):
		return err
	}
	return ReportStoreFailure(ctx, funcName, err)
}

func isClassified(err error) bool {
	var (
		validationErr *utils.ValidationError
		staleErr      *utils.StaleReferenceError
		referenceErr  *utils.ReferenceError
		uniqueErr     *utils.UniqueError
		connectionErr *utils.ConnectionError
	)
	return errors.As(err, &validationErr) ||
		errors.As(err, &staleErr) ||
		errors.As(err, &referenceErr) ||
		errors.As(err, &uniqueErr) ||
		errors.As(err, &connectionErr) ||
		errors.Is(err, utils.ErrorRecordNotFound) ||
		errors.Is(err, utils.ErrPermissionDenied) ||
		errors.Is(err, utils.ErrNoActor) ||
		errors.Is(err, utils.ErrInvalidPhoto) ||
		errors.Is(err, reconcile.ErrDuplicateKey) ||
		errors.Is(err, reconcile.ErrUnknownKey)
}

// MySQL server error numbers the store classifies.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

func mysqlErrorNumber(err error) uint16 {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	if mysqlErrorNumber(err) == mysqlRowIsReferenced {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "foreign key constraint")
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) || mysqlErrorNumber(err) == mysqlDuplicateEntry {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || strings.Contains(msg, "duplicate entry")
}

// isMissingReference reports an insert or update pointing at a row that does not exist.
func isMissingReference(err error) bool {
	if mysqlErrorNumber(err) == mysqlNoReferencedRow {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "cannot add or update a child row")
}

// foreignKeyColumn reads the column out of "... FOREIGN KEY (`audience_id`) REFERENCES ...".
func foreignKeyColumn(err error, fallback string) string {
	msg := err.Error()
	i := strings.Index(msg, "FOREIGN KEY (")
	if i < 0 {
		return fallback
	}
	rest := msg[i+len("FOREIGN KEY ("):]
	end := strings.Index(rest, ")")
	if end <= 0 {
		return fallback
	}
	return strings.Trim(rest[:end], "`\" ")
}

// uniqueColumn reads the column of a duplicate key error, the last one for a composite key.
// sqlite names it directly ("UNIQUE constraint failed: users.login"); MySQL names the index
// ("for key 'users.idx_users_login'"), which carries gorm's idx_<table>_<column> form.
func uniqueColumn(err error, fallback string) string {
	msg := err.Error()
	if i := strings.Index(msg, "UNIQUE constraint failed: "); i >= 0 {
		column := msg[i+len("UNIQUE constraint failed: "):]
		if comma := strings.LastIndex(column, ","); comma >= 0 {
			column = column[comma+1:]
		}
		if dot := strings.LastIndex(column, "."); dot >= 0 {
			column = column[dot+1:]
		}
		if column = strings.TrimSpace(column); column != "" {
			return column
		}
		return fallback
	}
	if i := strings.LastIndex(msg, "for key '"); i >= 0 {
		key := strings.TrimSuffix(msg[i+len("for key '"):], "'")
		if quote := strings.Index(key, "'"); quote >= 0 {
			key = key[:quote]
		}
		table := ""
		if dot := strings.LastIndex(key, "."); dot >= 0 {
			table, key = key[:dot], key[dot+1:]
		}
		if table != "" {
			key = strings.TrimPrefix(key, "idx_"+table+"_")
		}
		key = strings.TrimPrefix(key, "idx_")
		if key != "" && key != "PRIMARY" {
			return key
		}
	}
	return fallback
}
