package pipeline

// RunStats tracks aggregate counters and byte totals across a batch run.
type RunStats struct {
	Total      int
	Current    int
	Probed     int
	Failed     int
	Outliers   int
	TotalBytes int64
}

// OK reports whether every file that was attempted succeeded.
func (s *RunStats) OK() bool {
	return s.Failed == 0
}
