// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

// Package config provides layered configuration management for PulseHub
// using Koanf v2.
//
// Configuration is assembled from three sources with clear precedence:
//
//	Environment Variables > YAML Config File > Built-in Defaults
//
// The config file is optional; a fully functional gateway can be configured
// from environment variables alone, which suits container deployments.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Cannot load configuration")
//	}
//
//	server := &http.Server{Addr: cfg.Server.Addr()}
//
// All duration values accept Go duration strings ("30s", "1m", "500ms").
// Slice values from environment variables are comma-separated.
package config
