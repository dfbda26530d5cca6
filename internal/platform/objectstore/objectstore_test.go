package objectstore

import "testing"

func TestConfigFromEnv_DisabledByDefault(t *testing.T) {
	t.Setenv("OBJECTSTORE_ENDPOINT", "")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if cfg.Enabled() {
		t.Fatalf("object store enabled without OBJECTSTORE_ENDPOINT")
	}
}

func TestConfigFromEnv_EnabledRequiresCredentials(t *testing.T) {
	t.Setenv("OBJECTSTORE_ENDPOINT", "minio:9000")
	if _, err := ConfigFromEnv(); err == nil {
		t.Fatalf("expected error for missing credentials")
	}

	t.Setenv("OBJECTSTORE_ACCESS_KEY", "key")
	t.Setenv("OBJECTSTORE_SECRET_KEY", "secret")
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv: %v", err)
	}
	if !cfg.Enabled() {
		t.Fatalf("object store disabled with OBJECTSTORE_ENDPOINT set")
	}
	if cfg.BucketArchive != "authengine-audit-archive" {
		t.Fatalf("BucketArchive = %q", cfg.BucketArchive)
	}
}
