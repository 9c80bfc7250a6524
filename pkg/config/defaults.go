package config

import "github.com/matzehuels/libmirror/pkg/versions"

const (
	DefaultBaseURL         = "https://maven.google.com"
	DefaultDestination     = "my-lib-repo"
	DefaultLibraryDir      = "Google"
	DefaultCategory        = "Android"
	DefaultDescriptorName  = "library.xml"
	DefaultTimeoutSeconds  = 120
	DefaultRetries         = 3
	DefaultRetryDelay      = 1000
	DefaultIndexTTLMinutes = 360
	DefaultMongoDatabase   = "libmirror"
)

// Default returns the configuration matching the historical fixed constants.
func Default() Config {
	return Config{
		Repository: Repository{
			BaseURL:   DefaultBaseURL,
			UserAgent: "libmirror",
		},
		Output: Output{
			Destination:    DefaultDestination,
			LibraryDir:     DefaultLibraryDir,
			Category:       DefaultCategory,
			DescriptorName: DefaultDescriptorName,
		},
		Filter: Filter{
			ExcludedMarkers: append([]string(nil), versions.DefaultMarkers...),
		},
		HTTP: HTTP{
			TimeoutSeconds:   DefaultTimeoutSeconds,
			Retries:          DefaultRetries,
			RetryDelayMillis: DefaultRetryDelay,
		},
		Cache: Cache{
			IndexTTLMinutes: DefaultIndexTTLMinutes,
		},
		Catalog: Catalog{
			MongoDatabase: DefaultMongoDatabase,
		},
	}
}
