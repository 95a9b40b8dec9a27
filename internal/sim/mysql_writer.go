package sim

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"lorastat-sim/internal/stats"
)

// mysqlConn is the slice of *sqlx.DB the writer needs.
type mysqlConn interface {
	NamedExec(query string, arg interface{}) (sql.Result, error)
	Close() error
}

// MySQLWriter persists run summaries to a MySQL database.
type MySQLWriter struct {
	db mysqlConn
}

const summaryDDL = `
CREATE TABLE IF NOT EXISTS run_summaries (
  run INT NOT NULL,
  ack_mode BOOL NOT NULL,
  sent INT NOT NULL,
  received INT NOT NULL,
  pdr DOUBLE NOT NULL,
  imr_pdr DOUBLE NOT NULL,
  pcc_pdr DOUBLE NOT NULL,
  avg_delay_ms DOUBLE NOT NULL,
  avg_rssi DOUBLE NOT NULL,
  avg_snr DOUBLE NOT NULL,
  total_energy_j DOUBLE NOT NULL,
  throughput_bps DOUBLE NOT NULL,
  retransmissions INT NOT NULL,
  lost INT NOT NULL,
  expired INT NOT NULL,
  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (run, created_at)
)`

type summaryRow struct {
	Run             int     `db:"run"`
	AckMode         bool    `db:"ack_mode"`
	Sent            int     `db:"sent"`
	Received        int     `db:"received"`
	PDR             float64 `db:"pdr"`
	IMRPDR          float64 `db:"imr_pdr"`
	PCCPDR          float64 `db:"pcc_pdr"`
	AvgDelayMs      float64 `db:"avg_delay_ms"`
	AvgRSSI         float64 `db:"avg_rssi"`
	AvgSNR          float64 `db:"avg_snr"`
	TotalEnergyJ    float64 `db:"total_energy_j"`
	ThroughputBps   float64 `db:"throughput_bps"`
	Retransmissions int     `db:"retransmissions"`
	Lost            int     `db:"lost"`
	Expired         int     `db:"expired"`
}

// NewMySQLWriter connects with the given DSN and auto-creates the summary
// table if needed.
func NewMySQLWriter(dsn string) (*MySQLWriter, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	if _, err := db.Exec(summaryDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create run_summaries: %w", err)
	}
	return &MySQLWriter{db: db}, nil
}

// WriteSummary inserts one run summary row.
func (w *MySQLWriter) WriteSummary(s stats.RunSummary) error {
	row := summaryRow{
		Run:             s.Run,
		AckMode:         s.AckMode,
		Sent:            s.Sent,
		Received:        s.Received,
		PDR:             s.PDR,
		IMRPDR:          s.IMRPDR,
		PCCPDR:          s.PCCPDR,
		AvgDelayMs:      s.AvgDelayMs,
		AvgRSSI:         s.AvgRSSI,
		AvgSNR:          s.AvgSNR,
		TotalEnergyJ:    s.TotalEnergyJ,
		ThroughputBps:   s.ThroughputBps,
		Retransmissions: s.Retransmissions,
		Lost:            s.Loss.Lost,
		Expired:         s.Loss.Expired,
	}
	_, err := w.db.NamedExec(`INSERT INTO run_summaries
		(run, ack_mode, sent, received, pdr, imr_pdr, pcc_pdr, avg_delay_ms,
		 avg_rssi, avg_snr, total_energy_j, throughput_bps, retransmissions, lost, expired)
		VALUES
		(:run, :ack_mode, :sent, :received, :pdr, :imr_pdr, :pcc_pdr, :avg_delay_ms,
		 :avg_rssi, :avg_snr, :total_energy_j, :throughput_bps, :retransmissions, :lost, :expired)`, row)
	return err
}

// Close closes the database handle.
func (w *MySQLWriter) Close() error {
	return w.db.Close()
}
