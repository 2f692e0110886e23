package helper

import (
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Prefix kode transaksi per jenis.
const (
	CodePrefixPenukaran = "TKR"
	CodePrefixSetoran   = "STR"
)

const codeSeqWidth = 3

// NextTransactionCode membangun kode transaksi berurutan berbentuk
// PREFIX-YYMMDD<KODEPOS><SEQ>, mis. "TKR-26021802001": tanggal 18-02-2026,
// pos "02", urutan pertama hari itu.
//
// SEQ naik per hari per pos: cari kode terbesar dengan prefix yang sama
// (LIKE, urut menurun), parse digit ekornya, +1, pad ulang.
//
// Harus dipanggil di dalam transaksi yang sama dengan insert record-nya;
// kolom kode ber-unique constraint dan race antar checkout diserap oleh
// retry di database.WithTxRetry (unique_violation ikut diulang).
func NextTransactionCode(tx *gorm.DB, table, column, prefix, kodePos string, now time.Time) (string, error) {
	base := fmt.Sprintf("%s-%s%s", prefix, now.Format("060102"), kodePos)

	var last []string
	if err := tx.Table(table).
		Where(column+" LIKE ?", base+"%").
		Order(column + " DESC").
		Limit(1).
		Pluck(column, &last).Error; err != nil {
		return "", fmt.Errorf("ambil kode terakhir: %w", err)
	}

	seq := 1
	if len(last) > 0 && len(last[0]) > len(base) {
		n, err := strconv.Atoi(last[0][len(base):])
		if err != nil {
			return "", fmt.Errorf("kode terakhir %q tidak bisa diparse: %w", last[0], err)
		}
		seq = n + 1
	}

	return fmt.Sprintf("%s%0*d", base, codeSeqWidth, seq), nil
}
