package database

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTransientFailure dikembalikan setelah retry transaksi habis.
var ErrTransientFailure = errors.New("database: transient failure, retry habis")

const maxTxRetries = 5

// WithTxRetry menjalankan fn dalam transaksi dan mengulang sampai 5x kalau
// kena deadlock/serialization failure/unique violation (race pembuatan kode
// transaksi). Percobaan yang gagal di-rollback penuh oleh gorm sehingga tidak
// ada efek samping yang bocor antar percobaan.
func WithTxRetry(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var err error
	for attempt := 1; attempt <= maxTxRetries; attempt++ {
		err = db.Transaction(fn)
		if err == nil || !IsRetryable(err) {
			return err
		}
		log.Printf("[TX RETRY] percobaan %d/%d gagal: %v", attempt, maxTxRetries, err)
		time.Sleep(time.Duration(attempt) * 25 * time.Millisecond)
	}
	return errors.Join(ErrTransientFailure, err)
}

// IsRetryable: serialization_failure (40001), deadlock_detected (40P01),
// unique_violation (23505).
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "23505":
			return true
		}
	}
	// gorm membungkus error driver lain sebagai string "SQLSTATE xxxxx"
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 40001") ||
		strings.Contains(msg, "SQLSTATE 40P01") ||
		strings.Contains(msg, "SQLSTATE 23505")
}

// LockForUpdate menambahkan SELECT ... FOR UPDATE pada query. SQLite (dipakai
// test suite) men-serialisasi penulis sendiri dan tidak mengenal sintaks FOR
// UPDATE, jadi di-skip untuk dialek itu.
func LockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
