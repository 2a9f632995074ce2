package core

import "testing"

func TestApplyOptions(t *testing.T) {
	cfg := ApplyOptions(WithMaxBlock(2048))
	if cfg.MaxBlock != 2048 {
		t.Fatalf("max block = %d, want 2048", cfg.MaxBlock)
	}
}

func TestInvalidOptionsIgnored(t *testing.T) {
	cfg := ApplyOptions(WithMaxBlock(-1), nil)
	def := DefaultConfig()
	if cfg != def {
		t.Fatalf("cfg = %#v, want %#v", cfg, def)
	}
}
