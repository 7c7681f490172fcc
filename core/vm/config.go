package vm

// Config generalizes the teacher's vm.Config{Debug, Tracer, MaxCallDepth}
// into the knobs the analyzer and Frame need.
type Config struct {
	// WordWidth is the bit width of every Word on the stack and in memory
	// words. The EVM itself only ever uses 256; this is kept configurable
	// (up to 512) since the analyzer/plan/frame are meant to host variant
	// machines too.
	WordWidth uint

	// StackCapacity is the stack height Frame.Run allows a block to reach,
	// checked at block entry. Stack.Push and Stack.Dup also enforce the
	// fixed 1024-item limit, so a larger capacity does not raise it.
	StackCapacity int

	// MemoryLimit is the maximum number of bytes Memory may grow to.
	MemoryLimit uint64

	// MaxBytecodeSize bounds the bytecode NewFrame will accept; larger
	// code fails with ErrBytecodeTooLarge. The analyzer does not check it.
	MaxBytecodeSize int

	// AnalysisCacheSize is a plan count for an LRU analysis cache. Nothing
	// in this package reads it: a Cache is sized by NewCache's argument,
	// and NewCache rejects a size of zero.
	AnalysisCacheSize int

	// Tracer receives before/after/fault notifications for every step.
	// A nil Tracer is replaced with NoopTracer at Frame construction.
	Tracer Tracer
}

// DefaultConfig returns the configuration matching mainnet Ethereum.
func DefaultConfig() Config {
	return Config{
		WordWidth:         256,
		StackCapacity:     1024,
		MemoryLimit:       LazyMemoryDefaultLimit,
		MaxBytecodeSize:   24576,
		AnalysisCacheSize: 1024,
	}
}

func (c Config) withDefaults() Config {
	if c.WordWidth == 0 {
		c.WordWidth = 256
	}
	if c.StackCapacity == 0 {
		c.StackCapacity = 1024
	}
	if c.MemoryLimit == 0 {
		c.MemoryLimit = LazyMemoryDefaultLimit
	}
	if c.MaxBytecodeSize == 0 {
		c.MaxBytecodeSize = 24576
	}
	if c.Tracer == nil {
		c.Tracer = NoopTracer{}
	}
	return c
}
