package zarr

import (
	"runtime"
	"sync"
)

// Config holds the process-wide tunables for the engine: a single
// struct guarded by a reader/writer lock, initialised on first use and
// never torn down.
type Config struct {
	ValidateChecksums                          bool
	StoreEmptyChunks                           bool
	CodecConcurrentTarget                      int
	ChunkConcurrentMinimum                     int
	ExperimentalCodecStoreMetadataIfEncodeOnly bool
}

func defaultConfig() Config {
	return Config{
		ValidateChecksums:       true,
		StoreEmptyChunks:        false,
		CodecConcurrentTarget:   runtime.GOMAXPROCS(0),
		ChunkConcurrentMinimum:  4,
		ExperimentalCodecStoreMetadataIfEncodeOnly: false,
	}
}

type configState struct {
	mu  sync.RWMutex
	cfg Config
}

var (
	globalConfigOnce  sync.Once
	globalConfigState *configState
)

func globalConfigState_() *configState {
	globalConfigOnce.Do(func() {
		globalConfigState = &configState{cfg: defaultConfig()}
	})
	return globalConfigState
}

// GlobalConfig returns a copy of the current process-wide configuration.
// Readers never block writers for longer than a copy.
func GlobalConfig() Config {
	s := globalConfigState_()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// SetGlobalConfig replaces the process-wide configuration wholesale.
func SetGlobalConfig(cfg Config) {
	s := globalConfigState_()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
}

// UpdateGlobalConfig applies fn to a copy of the current configuration
// and installs the result, under a single write lock.
func UpdateGlobalConfig(fn func(*Config)) {
	s := globalConfigState_()
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.cfg)
}
