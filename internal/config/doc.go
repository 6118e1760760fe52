// Package config defines configuration for the exceldl CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (EXCELDL_ prefix)
//   - YAML configuration file
//
// # Structure
//
//	type Config struct {
//	    ExcelFile        string
//	    URLColumn        string
//	    OutputFolder     string
//	    MaxConcurrent    int
//	    FailureThreshold int
//	    Timeout          time.Duration
//	    UserAgent        string
//	    Headers          map[string]string
//	    DefaultExtension string
//	    ErrorLog         string
//	    Progress         bool
//	    LogLevel         string
//	}
package config
