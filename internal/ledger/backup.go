package ledger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// BackupService periodically copies the local ledger file aside. The Excel
// fallback is rewritten wholesale on every change, so a bad write loses the
// whole list; dated copies are the recovery path.
type BackupService struct {
	ledgerPath string
	storageDir string
	interval   time.Duration
	retention  int // days
	logger     *zerolog.Logger
}

func NewBackupService(ledgerPath, storageDir string, interval time.Duration, retentionDays int, logger *zerolog.Logger) *BackupService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &BackupService{
		ledgerPath: ledgerPath,
		storageDir: storageDir,
		interval:   interval,
		retention:  retentionDays,
		logger:     logger,
	}
}

func (s *BackupService) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("ledger backup service started")

	if err := s.PerformBackup(); err != nil {
		s.logger.Error().Err(err).Msg("initial ledger backup failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.PerformBackup(); err != nil {
				s.logger.Error().Err(err).Msg("scheduled ledger backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

func (s *BackupService) PerformBackup() error {
	if _, err := os.Stat(s.ledgerPath); os.IsNotExist(err) {
		return nil // nothing persisted yet
	}
	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("20060102_150405"))
	backupPath := filepath.Join(s.storageDir, name)

	source, err := os.Open(s.ledgerPath)
	if err != nil {
		return err
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return err
	}
	defer destination.Close()

	if _, err := io.Copy(destination, source); err != nil {
		return err
	}

	s.logger.Info().Str("path", backupPath).Msg("ledger backup completed")
	return nil
}

func (s *BackupService) CleanupOldBackups() {
	if s.retention <= 0 {
		return
	}
	files, err := os.ReadDir(s.storageDir)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.retention)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("deleting old ledger backup")
			os.Remove(filepath.Join(s.storageDir, file.Name()))
		}
	}
}
