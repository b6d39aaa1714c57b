package duplib

import "errors"

var (
	// ErrUnsupportedContentType is returned by a fingerprinter if a message
	// has nothing we can check: no text and no recognized media. Callers
	// should treat such messages as skipped.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrChatNotActive is returned by StoreRegistry.GetOrCreate if somebody
	// asks for a store of a chat which was never activated. This is a
	// programming error: check IsActive first.
	ErrChatNotActive = errors.New("chat is not active")

	// ErrStoreInvariant means that a chat store is in a broken state. It is
	// fatal for a single check but should never take the process down.
	ErrStoreInvariant = errors.New("chat store invariant is broken")
)

var (
	// ErrRegistryIsNotDefined is returned if detector is created without a
	// store registry.
	ErrRegistryIsNotDefined = errors.New("store registry is not defined")

	// ErrStatsIsNotDefined is returned if detector is created without a
	// stats aggregator.
	ErrStatsIsNotDefined = errors.New("stats aggregator is not defined")
)
