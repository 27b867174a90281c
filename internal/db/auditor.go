package db

import (
	"context"
	"database/sql"
	"time"

	"passvault/internal/crypto"

	"go.uber.org/zap"
)

// StartIntegrityAuditor periodically sweeps stored ciphertexts and logs
// every secret that no longer decrypts under the current key. It only reads;
// corrupt records stay in place so owners still see the per-record failure
// marker in listings.
func StartIntegrityAuditor(
	ctx context.Context,
	db *sql.DB,
	cipher *crypto.Cipher,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				corrupt, total, err := sweep(ctx, db, cipher)
				if err != nil {
					log.Error("integrity sweep failed", zap.Error(err))
					continue
				}
				if corrupt > 0 {
					log.Warn("integrity sweep found corrupt secrets",
						zap.Int("corrupt", corrupt),
						zap.Int("total", total),
					)
				}
			}
		}
	}()
}

func sweep(ctx context.Context, db *sql.DB, cipher *crypto.Cipher) (corrupt, total int, err error) {
	rows, err := db.QueryContext(ctx, `SELECT id, ciphertext FROM secrets`)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id         string
			ciphertext []byte
		)
		if err := rows.Scan(&id, &ciphertext); err != nil {
			return corrupt, total, err
		}
		total++
		if _, err := cipher.Decrypt(ciphertext); err != nil {
			corrupt++
		}
	}
	return corrupt, total, rows.Err()
}
