package config

// Default values for every configuration knob.
const (
	// DefaultScanChunks is the soft target number of chunks.
	DefaultScanChunks = 1000
	// DefaultScanMinChunkSize keeps chunks large enough to amortize
	// their full-tree first diff.
	DefaultScanMinChunkSize = 1000
	// DefaultScanLevel is the LZ4 compression level (0-9).
	DefaultScanLevel = 4
	// DefaultScanWorkers of 0 means one worker per CPU.
	DefaultScanWorkers = 0
	// DefaultScanOutput is the archive path.
	DefaultScanOutput = "stats.zip"

	// DefaultRenderWidth is the chart width in pixels.
	DefaultRenderWidth = 1600
	// DefaultRenderHeight is the chart height in pixels.
	DefaultRenderHeight = 1000
	// DefaultRenderWorkers of 0 means one worker per CPU.
	DefaultRenderWorkers = 0
	// DefaultRenderOutput is the chart page path.
	DefaultRenderOutput = "stats.html"
)
