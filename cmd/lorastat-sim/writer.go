package main

import (
	"os"

	"lorastat-sim/internal/config"
	"lorastat-sim/internal/sim"
)

// writerSet bundles the sinks one run reports into.
type writerSet struct {
	events    sim.EventWriter
	summaries sim.SummaryWriter
	samples   sim.SampleWriter
}

// newWriters sets up the result sinks based on flags and env vars. It returns
// the writers and a cleanup function to close any resources.
func newWriters(cfg *config.Study, printOnly bool, logFile, outDir string, tui *sim.TUIWriter) (writerSet, func(), error) {
	cleanup := func() {}

	var ews []sim.EventWriter
	var sws []sim.SummaryWriter
	var pws []sim.SampleWriter
	closers := []func(){}

	if tui != nil {
		ews = append(ews, tui)
		sws = append(sws, tui)
	} else if printOnly || noExternalSinks() {
		w := sim.NewColorStdoutWriter(cfg)
		ews = append(ews, w)
		sws = append(sws, w)
		pws = append(pws, sim.NewJSONStdoutWriter())
	}

	if !printOnly {
		if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" {
			db := os.Getenv("GREPTIMEDB_DATABASE")
			if db == "" {
				db = "public"
			}
			gw, err := sim.NewGreptimeDBWriter(endpoint, db)
			if err != nil {
				return writerSet{}, nil, err
			}
			ews = append(ews, gw)
			pws = append(pws, gw)
		}
		if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
			mw, err := sim.NewMySQLWriter(dsn)
			if err != nil {
				return writerSet{}, nil, err
			}
			sws = append(sws, mw)
			closers = append(closers, func() { mw.Close() })
		}
		if url := os.Getenv("AMQP_URL"); url != "" {
			exchange := os.Getenv("AMQP_EXCHANGE")
			if exchange == "" {
				exchange = "lorastat"
			}
			pub, err := sim.NewAMQPPublisher(url, exchange)
			if err != nil {
				return writerSet{}, nil, err
			}
			ews = append(ews, pub)
			sws = append(sws, pub)
			closers = append(closers, func() { pub.Close() })
		}
	}

	if outDir != "" {
		cw, err := sim.NewCSVWriter(outDir, cfg.Gateways)
		if err != nil {
			return writerSet{}, nil, err
		}
		sws = append(sws, cw)
		pws = append(pws, cw)
	}

	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile, logFile+".summary")
		if err != nil {
			return writerSet{}, nil, err
		}
		ews = append(ews, fw)
		sws = append(sws, fw)
		closers = append(closers, func() { fw.Close() })
	}

	if len(closers) > 0 {
		cleanup = func() {
			for _, c := range closers {
				c()
			}
		}
	}

	mw := sim.NewMultiWriter(ews, sws, pws)
	return writerSet{events: mw, summaries: mw, samples: mw}, cleanup, nil
}

// noExternalSinks reports whether no external sink is configured, in which
// case results go to STDOUT.
func noExternalSinks() bool {
	return os.Getenv("GREPTIMEDB_ENDPOINT") == "" &&
		os.Getenv("MYSQL_DSN") == "" &&
		os.Getenv("AMQP_URL") == ""
}
