package backup

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"path"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/lkane/hearthwatch/internal/metrics"
	"github.com/lkane/hearthwatch/internal/models"
)

// Uploader pushes CSV exports of the prediction history to an FTP server,
// typically a NAS on the home network.
type Uploader struct {
	addr string // host:port
	user string
	pass string
	dir  string // remote directory, "" for the login root
}

func NewUploader(addr, user, pass, dir string) *Uploader {
	return &Uploader{addr: addr, user: user, pass: pass, dir: dir}
}

// Export renders history records as CSV in the persisted column layout.
func Export(records []models.PredictionRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{
		"timestamp", "predicted_co2", "temp_c", "humidity_p", "rain_mm",
		"kettle_w", "fridge_w", "tv_w", "wm_w", "mw_w",
		"dishwasher_w", "toaster_w", "hifi_w", "oven_fan_w",
	}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.Timestamp.Format("2006-01-02 15:04:05"),
			strconv.FormatFloat(r.PredictedCO2, 'f', -1, 64),
			strconv.FormatFloat(r.Reading.TempC, 'f', -1, 64),
			strconv.FormatFloat(r.Reading.HumidityPct, 'f', -1, 64),
			strconv.FormatFloat(r.Reading.RainMM, 'f', -1, 64),
			watt(r, models.Kettle),
			watt(r, models.FridgeFreezer),
			watt(r, models.Television),
			watt(r, models.WashingMachine),
			watt(r, models.Microwave),
			watt(r, models.Dishwasher),
			watt(r, models.Toaster),
			watt(r, models.HiFi),
			watt(r, models.OvenExtractorFan),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func watt(r models.PredictionRecord, a models.Appliance) string {
	return strconv.FormatFloat(r.Reading.AppliancePower[a], 'f', -1, 64)
}

// Upload stores the export under a date-stamped name, retrying transient
// failures with exponential backoff.
func (u *Uploader) Upload(records []models.PredictionRecord, now time.Time) error {
	data, err := Export(records)
	if err != nil {
		metrics.BackupRuns.WithLabelValues("error").Inc()
		return fmt.Errorf("export history: %w", err)
	}

	name := fmt.Sprintf("hearthwatch-history-%s.csv", now.Format("2006-01-02"))
	remote := name
	if u.dir != "" {
		remote = path.Join(u.dir, name)
	}

	operation := func() error {
		conn, err := ftp.Dial(u.addr, ftp.DialWithTimeout(30*time.Second))
		if err != nil {
			return fmt.Errorf("ftp dial: %w", err)
		}
		defer conn.Quit()

		if err := conn.Login(u.user, u.pass); err != nil {
			return backoff.Permanent(fmt.Errorf("ftp login: %w", err))
		}

		if err := conn.Stor(remote, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("ftp stor %s: %w", remote, err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, bo); err != nil {
		metrics.BackupRuns.WithLabelValues("error").Inc()
		return err
	}

	metrics.BackupRuns.WithLabelValues("ok").Inc()
	log.Printf("backup: uploaded %s (%d records, %d bytes)", remote, len(records), len(data))
	return nil
}
