package stats

/////////////////////////
//      Requests       //
/////////////////////////

// RequestsIncr increments the Requests counter by 1.
func RequestsIncr() {
	s := get()
	if s == nil {
		return
	}

	s.Requests.add(1)
	s.RequestsRate.Incr(1)
	if p := promStats(); p != nil {
		p.requests.WithLabelValues(job, version).Inc()
	}
}

// RequestsGet returns the current value of the Requests counter.
func RequestsGet() int64 { return value(func(s *stats) *counter { return s.Requests }) }

/////////////////////////
//       Retries       //
/////////////////////////

// RetriesIncr increments the Retries counter by 1.
func RetriesIncr() {
	s := get()
	if s == nil {
		return
	}

	s.Retries.add(1)
	if p := promStats(); p != nil {
		p.retries.WithLabelValues(job, version).Inc()
	}
}

// RetriesGet returns the current value of the Retries counter.
func RetriesGet() int64 { return value(func(s *stats) *counter { return s.Retries }) }

/////////////////////////
//   ItemsDiscovered   //
/////////////////////////

// ItemsDiscoveredAdd adds n to the ItemsDiscovered counter.
func ItemsDiscoveredAdd(n int) {
	s := get()
	if s == nil || n == 0 {
		return
	}

	s.ItemsDiscovered.add(int64(n))
	if p := promStats(); p != nil {
		p.itemsDiscovered.WithLabelValues(job, version).Add(float64(n))
	}
}

// ItemsDiscoveredGet returns the current value of the ItemsDiscovered counter.
func ItemsDiscoveredGet() int64 { return value(func(s *stats) *counter { return s.ItemsDiscovered }) }

/////////////////////////
//      Outcomes       //
/////////////////////////

// DownloadedIncr increments the Downloaded counter by 1.
func DownloadedIncr() { outcomeIncr(func(s *stats) *counter { return s.Downloaded }, "downloaded") }

// DownloadedGet returns the current value of the Downloaded counter.
func DownloadedGet() int64 { return value(func(s *stats) *counter { return s.Downloaded }) }

// SkippedIgnoredIncr increments the SkippedIgnored counter by 1.
func SkippedIgnoredIncr() {
	outcomeIncr(func(s *stats) *counter { return s.SkippedIgnored }, "skipped_ignored")
}

// SkippedIgnoredGet returns the current value of the SkippedIgnored counter.
func SkippedIgnoredGet() int64 { return value(func(s *stats) *counter { return s.SkippedIgnored }) }

// SkippedUpToDateIncr increments the SkippedUpToDate counter by 1.
func SkippedUpToDateIncr() {
	outcomeIncr(func(s *stats) *counter { return s.SkippedUpToDate }, "skipped_up_to_date")
}

// SkippedUpToDateGet returns the current value of the SkippedUpToDate counter.
func SkippedUpToDateGet() int64 { return value(func(s *stats) *counter { return s.SkippedUpToDate }) }

// FailedIncr increments the Failed counter by 1.
func FailedIncr() { outcomeIncr(func(s *stats) *counter { return s.Failed }, "failed") }

// FailedGet returns the current value of the Failed counter.
func FailedGet() int64 { return value(func(s *stats) *counter { return s.Failed }) }

func outcomeIncr(field func(*stats) *counter, outcome string) {
	s := get()
	if s == nil {
		return
	}

	field(s).add(1)
	if p := promStats(); p != nil {
		p.transfers.WithLabelValues(job, version, outcome).Inc()
	}
}

/////////////////////////
//   BytesDownloaded   //
/////////////////////////

// BytesDownloadedAdd adds n bytes to the BytesDownloaded counter.
func BytesDownloadedAdd(n int64) {
	s := get()
	if s == nil || n <= 0 {
		return
	}

	s.BytesDownloaded.add(n)
	s.BytesRate.Incr(n)
	if p := promStats(); p != nil {
		p.bytesDownloaded.WithLabelValues(job, version).Add(float64(n))
	}
}

// BytesDownloadedGet returns the current value of the BytesDownloaded counter.
func BytesDownloadedGet() int64 { return value(func(s *stats) *counter { return s.BytesDownloaded }) }

/////////////////////////
//    UnitsInFlight    //
/////////////////////////

// UnitsInFlightIncr increments the UnitsInFlight gauge of a phase by 1.
func UnitsInFlightIncr(phase string) { unitsInFlightAdd(phase, 1) }

// UnitsInFlightDecr decrements the UnitsInFlight gauge of a phase by 1.
func UnitsInFlightDecr(phase string) { unitsInFlightAdd(phase, -1) }

// UnitsInFlightGet returns the number of units in flight across phases.
func UnitsInFlightGet() int64 { return value(func(s *stats) *counter { return s.UnitsInFlight }) }

func unitsInFlightAdd(phase string, step int64) {
	s := get()
	if s == nil {
		return
	}

	s.UnitsInFlight.add(step)
	if p := promStats(); p != nil {
		p.unitsInFlight.WithLabelValues(job, version, phase).Add(float64(step))
	}
}

/////////////////////////
//      GateInUse      //
/////////////////////////

// GateInUseIncr increments the GateInUse gauge by 1.
func GateInUseIncr() { gateInUseAdd(1) }

// GateInUseDecr decrements the GateInUse gauge by 1.
func GateInUseDecr() { gateInUseAdd(-1) }

// GateInUseGet returns the number of admission tickets currently held.
func GateInUseGet() int64 { return value(func(s *stats) *counter { return s.GateInUse }) }

func gateInUseAdd(step int64) {
	s := get()
	if s == nil {
		return
	}

	s.GateInUse.add(step)
	if p := promStats(); p != nil {
		p.gateInUse.WithLabelValues(job, version).Add(float64(step))
	}
}

func value(field func(*stats) *counter) int64 {
	s := get()
	if s == nil {
		return 0
	}

	return field(s).get()
}
