package aggregator

// OnBatchStartCallback is called once before any instrument runs. Returning
// an error aborts the batch.
type OnBatchStartCallback func(runID string, totalInstruments int) error

// OnInstrumentEndCallback is called when an instrument finishes, with the
// error that excluded it or nil. Parallel executors call it concurrently.
type OnInstrumentEndCallback func(instrumentCode string, err error)

// OnBatchEndCallback is called when the batch completes (always called via defer).
type OnBatchEndCallback func(err error)

// LifecycleCallbacks holds all lifecycle callback functions for a batch.
// All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnBatchStart    *OnBatchStartCallback
	OnInstrumentEnd *OnInstrumentEndCallback
	OnBatchEnd      *OnBatchEndCallback
}
