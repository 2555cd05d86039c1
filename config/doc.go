// Package config loads CLI and service configuration.
//
// It uses Viper to read a YAML file and environment variables, and
// godotenv to pull in a .env file. Environment keys are matched against
// nested config keys in several spellings, so FACTORY_BASE_PATH sets
// factory.base_path.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("factorygirl", &cfg, config.WithConfigFile(path))
package config
