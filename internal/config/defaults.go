package config

const (
	defaultDataDir    = "~/.local/share/lessonlink"
	defaultLogDir     = "~/.local/share/lessonlink/logs"
	defaultSocketPath = "~/.local/share/lessonlink/lessonlinkd.sock"

	defaultSourcePageSize       = 300
	defaultSourceRequestTimeout = 30

	defaultAmbiguityDiff         = 5
	defaultHighConfidenceFloor   = 85
	defaultMediumConfidenceFloor = 60
	defaultShortlistSize         = 8
	defaultRetrievalFloor        = 0.10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// defaultIrrelevantWords is the closed filler-token deny-list applied during
// normalization. Entries are matched at word boundaries, case-insensitively.
// Program-code abbreviations must never appear here.
func defaultIrrelevantWords() []string {
	return []string{"online", "per", "virtual", "zoom", "class", "clase", "meeting"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			SocketPath: defaultSocketPath,
		},
		Source: Source{
			PageSize:       defaultSourcePageSize,
			RequestTimeout: defaultSourceRequestTimeout,
		},
		Matching: Matching{
			AmbiguityDiff:         defaultAmbiguityDiff,
			HighConfidenceFloor:   defaultHighConfidenceFloor,
			MediumConfidenceFloor: defaultMediumConfidenceFloor,
			ShortlistSize:         defaultShortlistSize,
			RetrievalFloor:        defaultRetrievalFloor,
			IrrelevantWords:       defaultIrrelevantWords(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
