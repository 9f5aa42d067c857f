package schemavalidator

import "time"

// State is the lifecycle state of a Validator.
type State int32

const (
	StateUninitialized State = iota // Init has not been called.
	StateReady                      // An engine is loaded; stable for the Validator's lifetime.
	StateFailed                     // The last Init attempt failed; Init may be retried.
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Mode selects how Validate reports non-conforming data.
type Mode int

const (
	// ModeThrowOnInvalid returns a *ValidationError for non-conforming data.
	// A successful Validate always reports true.
	ModeThrowOnInvalid Mode = iota
	// ModeBoolean returns (false, nil) when the engine reports the data as
	// invalid without raising an error. Engine errors still surface as
	// *ValidationError.
	ModeBoolean
)

func (m Mode) String() string {
	if m == ModeBoolean {
		return "boolean"
	}
	return "throw"
}

// Severity expresses how duplicate keys in textual data are handled.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

// Source identifies the engine module handed to Init: either a locator or
// raw descriptor content.
type Source struct {
	Locator string
	Content []byte
}

// Locate returns a Source naming a registered module or a descriptor file.
func Locate(locator string) Source { return Source{Locator: locator} }

// Content returns a Source carrying a raw descriptor (YAML or JSON).
func Content(b []byte) Source { return Source{Content: b} }

func (s Source) String() string {
	if len(s.Content) > 0 {
		return "<content>"
	}
	return s.Locator
}

// Descriptor configures an engine module.
type Descriptor struct {
	Engine       string `yaml:"engine"`
	Draft        string `yaml:"draft,omitempty"` // "4", "6", "7", "2019-09", "2020-12"
	AssertFormat bool   `yaml:"assertFormat,omitempty"`

	// DetailedErrors makes boolean-return engines report violations as an
	// error mapping instance locations to messages instead of false.
	DetailedErrors bool         `yaml:"detailedErrors,omitempty"`
	Remote         RemoteConfig `yaml:"remote,omitempty"`
}

// RemoteConfig controls retrieval of http(s) schema references.
type RemoteConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	Cache     string        `yaml:"cache,omitempty"` // "", "memory" or "redis"
	CacheSize int           `yaml:"cacheSize,omitempty"`
	TTL       time.Duration `yaml:"ttl,omitempty"`
	RedisAddr string        `yaml:"redisAddr,omitempty"`
	KeyPrefix string        `yaml:"keyPrefix,omitempty"`
}

// Ref is an explicit schema reference (http://, https:// or id://).
type Ref string

// YAML is schema or data given as YAML text. It is converted to JSON before
// reaching the engine.
type YAML string
