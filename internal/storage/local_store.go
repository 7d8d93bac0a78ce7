package storage

import (
	"context"
	"fmt"
	"tokend/internal/providers"
	"tokend/internal/structures"
	"tokend/internal/token/interfaces"
)

// LocalStoreInterface is a LocalStore that can enumerate keys and be closed.
type LocalStoreInterface interface {
	interfaces.LocalStore
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// NewLocalStore opens the local store selected by localStore.driver.
func NewLocalStore(conf *structures.Config, logger providers.Logger) (LocalStoreInterface, error) {
	switch conf.LocalStore.Driver {
	case "sqlite":
		s, err := NewSQLiteStore(conf.LocalStore.Path)
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeApp, "Local store: sqlite %s", conf.LocalStore.Path)
		return s, nil
	case "file":
		compressor, err := NewZstdCompressor()
		if err != nil {
			return nil, err
		}
		s, err := NewFileStore(conf.LocalStore.Path, compressor, logger)
		if err != nil {
			compressor.Close()
			return nil, err
		}
		logger.Infof(providers.TypeApp, "Local store: snapshot file %s", conf.LocalStore.Path)
		return s, nil
	default:
		return nil, fmt.Errorf("unknown local store driver %q", conf.LocalStore.Driver)
	}
}

// RemoteStoreInterface is a RemoteStore that can be closed.
type RemoteStoreInterface interface {
	interfaces.RemoteStore
	Close() error
}

// NewRemoteStore opens the shared document store, or returns nil when remote
// sync is disabled.
func NewRemoteStore(conf *structures.Config, logger providers.Logger) (RemoteStoreInterface, error) {
	if !conf.Remote.Enabled {
		logger.Infof(providers.TypeApp, "Remote sync disabled")
		return nil, nil
	}
	d, err := NewDocumentStore(conf.Remote.Path)
	if err != nil {
		return nil, err
	}
	logger.Infof(providers.TypeApp, "Remote store: %s", conf.Remote.Path)
	return d, nil
}
