package duplib

// DetectorOpts is a structure with settings of a Detector.
type DetectorOpts struct {
	// Registry defines a registry of chat stores.
	//
	// This is a mandatory setting.
	Registry *StoreRegistry

	// Stats defines an aggregator of detection outcomes.
	//
	// This is a mandatory setting.
	Stats *StatsAggregator

	// IncludeCaption makes media captions a part of the content identity.
	// If it is set, the same photo with different captions is not a
	// duplicate.
	//
	// This is an optional setting, disabled by default.
	IncludeCaption bool

	// EventStream defines an instance of event stream.
	//
	// This is an optional setting.
	EventStream EventStream

	// Logger defines an instance of the logger.
	//
	// This is an optional setting.
	Logger Logger
}

func (d DetectorOpts) valid() error {
	switch {
	case d.Registry == nil:
		return ErrRegistryIsNotDefined
	case d.Stats == nil:
		return ErrStatsIsNotDefined
	}

	return nil
}

func (d DetectorOpts) getEventStream() EventStream {
	if d.EventStream == nil {
		return noopEventStream{}
	}

	return d.EventStream
}

func (d DetectorOpts) getLogger(name string) Logger {
	if d.Logger == nil {
		return noopLogger{}
	}

	return d.Logger.Named(name)
}
