// Package config loads the retriever client configuration.
//
// # Overview
//
// Settings come from a TOML file, environment variables and built-in
// defaults, in that order of increasing precedence for the keys that have
// an environment override:
//
//  1. Defaults
//  2. ~/.config/retriever/config.toml, or the path passed to Load
//  3. RETRIEVER_API_BASE, RETRIEVER_TOKEN, RETRIEVER_LOG_LEVEL
//
// LoadDotEnv can populate those variables from a .env file first; it never
// overrides variables already present in the environment.
//
// # Configuration Fields
//
//	api_base            backend root, default http://127.0.0.1:8000
//	token               bearer token
//	token_file          file holding the token, read when token is empty
//	request_timeout     per-request deadline, default 10s
//	poll_interval       session refresh cadence, default 30s
//	page_size_override  forces one page size for every list when > 0
//	log_file            default ~/.local/state/retriever/retriever.log
//	log_level           debug, info, warn or error
//
// A missing config file is not an error. A file that exists but fails to
// parse or validate is.
package config
