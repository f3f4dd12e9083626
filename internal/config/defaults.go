package config

const (
	defaultInputDir       = "mpk_dir"
	defaultOutputDir      = "geojson_dir"
	defaultScratchDir     = "temp_mpk_extract"
	defaultMinFreeMiB     = 256
	defaultArchiveExt     = ".mpk"
	defaultDatasetPath    = "commondata/shp4ia"
	defaultDatasetDirName = "shp4ia"
	defaultDatasetSuffix  = ".shp"
	defaultOutputExt      = ".json"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults. Relative paths
// resolve against the working directory during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:   defaultInputDir,
			OutputDir:  defaultOutputDir,
			ScratchDir: defaultScratchDir,
			MinFreeMiB: defaultMinFreeMiB,
		},
		Archive: Archive{
			Extensions: []string{defaultArchiveExt},
		},
		Layout: Layout{
			DatasetPath:    defaultDatasetPath,
			DatasetDirName: defaultDatasetDirName,
			DatasetSuffix:  defaultDatasetSuffix,
		},
		Output: Output{
			Extension: defaultOutputExt,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
