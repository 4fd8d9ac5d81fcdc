package main

import (
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pricewatch/pkg/config"
)

func TestOpts_Defaults(t *testing.T) {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	_, err := parser.ParseArgs([]string{})
	require.NoError(t, err)

	assert.Equal(t, "config.yml", opts.Config)
	assert.False(t, opts.Debug)
	assert.False(t, opts.NoColor)
}

func TestOpts_Parse(t *testing.T) {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	_, err := parser.ParseArgs([]string{"--config=/etc/pricewatch.yml", "--dbg", "--no-color"})
	require.NoError(t, err)

	assert.Equal(t, "/etc/pricewatch.yml", opts.Config)
	assert.True(t, opts.Debug)
	assert.True(t, opts.NoColor)
}

func TestDBConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Database.DSN = "file:test.db"
	cfg.Database.MaxOpenConns = 7
	cfg.Database.MaxIdleConns = 3
	cfg.Database.ConnMaxLifetime = 120 // seconds

	dbCfg := dbConfig(cfg)
	assert.Equal(t, "file:test.db", dbCfg.DSN)
	assert.Equal(t, 7, dbCfg.MaxOpenConns)
	assert.Equal(t, 3, dbCfg.MaxIdleConns)
	assert.Equal(t, 2*time.Minute, dbCfg.ConnMaxLifetime)
}

func TestSetupLog(t *testing.T) {
	// no panic on both modes
	setupLog(false)
	setupLog(true, "secret-value")
}
