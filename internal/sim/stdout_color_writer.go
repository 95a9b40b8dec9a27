// ColorStdoutWriter prints human-friendly, colorized packet events to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"

	"golang.org/x/term"

	"lorastat-sim/internal/config"
	"lorastat-sim/internal/stats"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints packet events using ANSI colors. Colors are
// disabled when STDOUT is not a terminal.
type ColorStdoutWriter struct {
	cfg   *config.Study
	out   io.Writer
	once  sync.Once
	color bool
}

var outcomePalette = map[stats.EventType]string{
	stats.EventSent:                 colorBlue,
	stats.EventDelivered:            colorGreen,
	stats.EventLostInterference:     colorRed,
	stats.EventLostUnderSensitivity: colorYellow,
	stats.EventLostNoReceivers:      colorMagenta,
	stats.EventLostBusy:             colorCyan,
	stats.EventAcknowledgment:       colorGray,
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.Study) *ColorStdoutWriter {
	return &ColorStdoutWriter{
		cfg:   cfg,
		out:   os.Stdout,
		color: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (w *ColorStdoutWriter) paint(color, s string) string {
	if !w.color {
		return s
	}
	return color + s + colorReset
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	tw := tabwriter.NewWriter(w.out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "devices\tgateways\tradius_m\tduration_s\ttx_mode\tpayload_bytes")
	fmt.Fprintf(tw, "%d\t%d\t%.0f\t%d\t%s\t%d\n",
		w.cfg.Devices, w.cfg.Gateways, w.cfg.RadiusMeters, w.cfg.DurationS,
		w.cfg.TxMode, w.cfg.PayloadBytes)
	tw.Flush()
}

// WriteEvent prints one packet event line.
func (w *ColorStdoutWriter) WriteEvent(e stats.Event) error {
	w.once.Do(w.printOverview)
	line := fmt.Sprintf("[%s] %s pkt=%d dev=%d class=%s rate=%d",
		w.paint(colorGray, fmt.Sprintf("%.0fms", e.TimeMs)),
		w.paint(outcomePalette[e.Type], string(e.Type)),
		e.PacketID, e.DeviceID, e.Class, e.RateIdx)
	if e.Type != stats.EventSent && e.Type != stats.EventAcknowledgment {
		line += fmt.Sprintf(" rssi=%.1f snr=%.1f", e.RSSI, e.SNR)
	}
	if e.Type == stats.EventAcknowledgment {
		line += fmt.Sprintf(" success=%t attempts=%d", e.Success, e.Attempts)
	}
	fmt.Fprintln(w.out, line)
	return nil
}

// WriteSummary prints the run summary as an aligned block.
func (w *ColorStdoutWriter) WriteSummary(s stats.RunSummary) error {
	tw := tabwriter.NewWriter(w.out, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%d\n", s.Run)
	fmt.Fprintf(tw, "sent\t%d\n", s.Sent)
	fmt.Fprintf(tw, "received\t%d\n", s.Received)
	fmt.Fprintf(tw, "pdr\t%.2f%%\n", s.PDR)
	fmt.Fprintf(tw, "imr pdr\t%.2f%%\n", s.IMRPDR)
	fmt.Fprintf(tw, "pcc pdr\t%.2f%%\n", s.PCCPDR)
	fmt.Fprintf(tw, "avg delay\t%.2fms\n", s.AvgDelayMs)
	fmt.Fprintf(tw, "lost\t%d\n", s.Loss.Lost)
	fmt.Fprintf(tw, "expired\t%d\n", s.Loss.Expired)
	fmt.Fprintf(tw, "retransmissions\t%d\n", s.Retransmissions)
	fmt.Fprintf(tw, "energy\t%.2fJ\n", s.TotalEnergyJ)
	fmt.Fprintf(tw, "throughput\t%.2fbps\n", s.ThroughputBps)
	return tw.Flush()
}
