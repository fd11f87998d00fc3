package metrics

// Wrapper exposes the narrow recording interface the prediction service
// consumes, keeping the pipeline packages free of a direct Prometheus
// dependency.
type Wrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *Wrapper {
	return &Wrapper{m: m}
}

func (w *Wrapper) PredictionsInc()        { w.m.PredictionsTotal.Inc() }
func (w *Wrapper) PredictionFailuresInc() { w.m.PredictionFailures.Inc() }
func (w *Wrapper) IngestionFailuresInc()  { w.m.IngestionFailures.Inc() }
func (w *Wrapper) EncodingFailuresInc()   { w.m.EncodingFailures.Inc() }
func (w *Wrapper) StoreWritesInc()        { w.m.StoreWrites.Inc() }
func (w *Wrapper) StoreFailuresInc()      { w.m.StoreFailures.Inc() }
func (w *Wrapper) HistoryQueriesInc()     { w.m.HistoryQueries.Inc() }

func (w *Wrapper) PipelineLatencyObserve(seconds float64)  { w.m.PipelineLatency.Observe(seconds) }
func (w *Wrapper) ModelLatencyObserve(seconds float64)     { w.m.ModelLatency.Observe(seconds) }
func (w *Wrapper) IngestLatencyObserve(seconds float64)    { w.m.IngestLatency.Observe(seconds) }
func (w *Wrapper) PredictionScoreObserve(score float64)    { w.m.PredictionScores.Observe(score) }
