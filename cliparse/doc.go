// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Each field is resolved from, in order of precedence:

 1. a CLI flag
 2. the process environment
 3. a .env file in the working directory (optional)
 4. the built-in default

# Fields

	Field                Flag                     Env                    Default
	Port                 -p                       PORT                   3318
	DatabaseURL          -d                       DATABASE_URL           (required)
	DatabaseType         -t                       DATABASE_TYPE          sqlite
	TokenSecret          --token-secret           TOKEN_SECRET           (required)
	TokenTTL             --token-ttl              TOKEN_TTL              12h
	AutoAdvanceInterval  --auto-advance-interval  AUTO_ADVANCE_INTERVAL  5s (0 disables)
	SeedFile             --seed                   SEED_FILE              ""
	Debug                --debug                  DEBUG                  false

# Example

	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	store, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(store, cfg, prometheus.DefaultRegisterer)
*/
package cliparse
