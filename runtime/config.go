package runtime

import "github.com/BurntSushi/toml"

// Limits holds the runtime's build-time-constant-turned-configurable
// knobs: spec.md §4.3's step budget and §2's heartbeat period, plus the
// per-job M_LANG_MAX_OPENFILE cap and the reactor's readiness poll
// buffer size.
type Limits struct {
	StepBudget      int   `toml:"step_budget"`
	HeartbeatMillis int64 `toml:"heartbeat_millis"`
	MaxOpenFiles    int   `toml:"max_open_files"`
	PollBufferSize  int   `toml:"poll_buffer_size"`
}

// DefaultLimits returns spec.md's stated defaults: step budget 64,
// heartbeat 50ms.
func DefaultLimits() Limits {
	return Limits{
		StepBudget:      64,
		HeartbeatMillis: 50,
		MaxOpenFiles:    256,
		PollBufferSize:  256,
	}
}

// LoadLimits reads a TOML limits file, starting from DefaultLimits so an
// omitted field keeps its default rather than zeroing out.
func LoadLimits(path string) (Limits, error) {
	limits := DefaultLimits()
	_, err := toml.DecodeFile(path, &limits)
	if err != nil {
		return Limits{}, err
	}
	return limits, nil
}
