// Package config provides loading, environment overlay and validation for
// relay configuration. It exposes a Default() baseline that Load and FromEnv
// refine.
//
// Example:
//
//	cfg := config.Default()
//	if fileCfg, err := config.Load(config.DefaultConfigPath()); err == nil {
//	    cfg = fileCfg
//	}
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { /* handle */ }
//	rt, _ := runtime.Open(runtime.Options{Config: cfg})
//	defer rt.Close()
package config
