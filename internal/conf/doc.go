// Package conf implements drop-in configuration file support for the
// appearance tool.
//
// # Usage
//
// The global Configuration variable is automatically loaded at package initialization:
//
//	import "github.com/gitui/appearance/internal/conf"
//
//	func main() {
//	    fmt.Println(conf.Configuration.DictionaryDir)
//	}
//
// For custom configuration loading (e.g., testing or --config), use ConfigSource:
//
//	cs := &conf.ConfigSource{
//	    Path:      "/custom/path/config.toml",
//	    DropInDir: "/custom/path/config.toml.d",
//	}
//	config, err := cs.Read()
//
// # Load Order
//
// Config is loaded and applied in three layers:
//
//  1. Embedded defaults (config.toml in this package)
//  2. Main config file: /etc/appearance/config.toml
//  3. Drop-in files: /etc/appearance/config.toml.d/*.toml, in lexicographic order
//
// Path values starting with "~/" are resolved against the home directory of
// the user running the tool.
//
// # Internal Architecture
//
// The implementation uses a DTO (Data Transfer Object) pattern:
//
//   - configDTO: internal struct with pointer fields for TOML parsing.
//     Pointers allow distinguishing "not set" (nil) from "set to zero value".
//
//   - Config: public struct with value fields. Has Update() method
//     to apply DTO values.
//
//   - ConfigSource: orchestrates loading from multiple sources and manages
//     their merging.
//
//   - parseConfigDTO: parses and validates a TOML string into a configDTO.
package conf
