package config

const (
	defaultDataDir            = "~/.local/share/sentinel/data"
	defaultLogDir             = "~/.local/share/sentinel/logs"
	defaultBranchA            = "SY"
	defaultBranchB            = "NDONGO"
	defaultStoreDelimiter     = ";"
	defaultImportDelimiter    = ";"
	defaultImportEncoding     = "utf-8"
	defaultLockTimeoutSeconds = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultMetricsFileName    = "sentinel.prom"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Branches: Branches{
			A: defaultBranchA,
			B: defaultBranchB,
		},
		Store: Store{
			Delimiter:          defaultStoreDelimiter,
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Import: Import{
			Delimiter: defaultImportDelimiter,
			Encoding:  defaultImportEncoding,
		},
		Archive: Archive{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
