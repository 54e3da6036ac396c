// Package config loads command configuration from a YAML file, an optional
// .env file and the environment, using Viper and godotenv.
//
// Files are found by Resolver in ./cmd/<name>/, ./config/ and the working
// directory unless given explicitly. Environment variables override file
// values: CLIENT_BASE_URL sets client.base_url, or RESTDEMO_CLIENT_BASE_URL
// with WithEnvPrefix("restdemo").
//
//	var cfg AppConfig
//	if err := config.Load("restdemo", &cfg, config.WithEnvPrefix("restdemo")); err != nil {
//	    return err
//	}
package config
