package config

import "testing"

func TestFromEnv_DBMaxConns(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "16")

	cfg := FromEnv()
	if cfg.DBMaxConns != 16 {
		t.Fatalf("DBMaxConns = %d, want 16", cfg.DBMaxConns)
	}
}

func TestFromEnv_DBMaxConnsDefaultsToZero(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "")

	cfg := FromEnv()
	if cfg.DBMaxConns != 0 {
		t.Fatalf("DBMaxConns = %d, want driver default 0", cfg.DBMaxConns)
	}
}

func TestFromEnv_BadDBMaxConnsFallsBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")

	cfg := FromEnv()
	if cfg.DBMaxConns != 0 {
		t.Fatalf("DBMaxConns = %d, want 0 on unparsable value", cfg.DBMaxConns)
	}
}
