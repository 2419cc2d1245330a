package stats

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gosuri/uilive"
	"github.com/gosuri/uitable"
)

// Printer refreshes a live stats table on a terminal
type Printer struct {
	Out      io.Writer
	Interval time.Duration
	State    func() string
}

// Run draws the table until ctx is done. Preferably run this in a goroutine.
func (p *Printer) Run(ctx context.Context) {
	writer := uilive.New()
	if p.Out != nil {
		writer.Out = p.Out
	}

	interval := p.Interval
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fmt.Fprintln(writer, p.Table().String())
		writer.Flush()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Table builds the current stats table
func (p *Printer) Table() *uitable.Table {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	table := uitable.New()
	table.MaxColWidth = 80
	table.Wrap = true

	values := GetMap()

	table.AddRow("", "")
	if p.State != nil {
		table.AddRow("  - State:", p.State())
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch k {
		case "Bytes downloaded":
			table.AddRow("  - "+k+":", humanize.Bytes(uint64(values[k].(int64))))
		case "Bytes/s":
			table.AddRow("  - "+k+":", humanize.Bytes(uint64(values[k].(int64)))+"/s")
		default:
			table.AddRow("  - "+k+":", values[k])
		}
	}

	table.AddRow("", "")
	if s := get(); s != nil {
		table.AddRow("  - Elapsed time:", time.Since(s.StartTime).Round(time.Second).String())
	}
	table.AddRow("  - Allocated (heap):", humanize.Bytes(m.Alloc))
	table.AddRow("  - Goroutines:", runtime.NumGoroutine())
	table.AddRow("", "")

	return table
}
