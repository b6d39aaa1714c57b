package duplib

import "time"

// StoreRegistryOpts is a structure with settings of a StoreRegistry.
type StoreRegistryOpts struct {
	// Capacity is a maximal number of records per chat.
	//
	// This is an optional setting, DefaultChatStoreCapacity by default.
	Capacity int

	// Retention is an age after which records are treated as absent.
	//
	// This is an optional setting. 0 disables time-based expiry, so records
	// are removed only by FIFO eviction.
	Retention time.Duration

	// Recorder is notified on activation changes. Usually this is a
	// StatsAggregator.
	//
	// This is an optional setting.
	Recorder ActivationRecorder

	// EventStream defines an instance of event stream.
	//
	// This is an optional setting.
	EventStream EventStream

	// Logger defines an instance of the logger.
	//
	// This is an optional setting.
	Logger Logger
}

func (s StoreRegistryOpts) getCapacity() int {
	if s.Capacity <= 0 {
		return DefaultChatStoreCapacity
	}

	return s.Capacity
}

func (s StoreRegistryOpts) getRetention() time.Duration {
	if s.Retention < 0 {
		return 0
	}

	return s.Retention
}

func (s StoreRegistryOpts) getRecorder() ActivationRecorder {
	if s.Recorder == nil {
		return noopRecorder{}
	}

	return s.Recorder
}

func (s StoreRegistryOpts) getEventStream() EventStream {
	if s.EventStream == nil {
		return noopEventStream{}
	}

	return s.EventStream
}

func (s StoreRegistryOpts) getLogger(name string) Logger {
	if s.Logger == nil {
		return noopLogger{}
	}

	return s.Logger.Named(name)
}
