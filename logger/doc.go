// Package logger provides structured logging for factorygirl using zerolog.
//
// Loggers are tagged per component and accept optional field maps:
//
//	log := logger.Get("factory")
//	log.Info("Factories prepared", map[string]interface{}{"tables": 4})
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"   # or "json"
//	  output: "stderr"
package logger
