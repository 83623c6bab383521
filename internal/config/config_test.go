package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("UPLOAD_BACKEND", "")
	t.Setenv("WORKER_INTERVAL", "")
	t.Setenv("SMTP_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.UploadBackend)
	assert.Equal(t, 5*time.Minute, cfg.WorkerInterval)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "vnpay", cfg.DefaultPaymentGateway)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "non numeric smtp port", env: map[string]string{"SMTP_PORT": "abc"}},
		{name: "bad worker interval", env: map[string]string{"WORKER_INTERVAL": "soon"}},
		{name: "unknown upload backend", env: map[string]string{"UPLOAD_BACKEND": "ftp"}},
		{name: "minio without credentials", env: map[string]string{"UPLOAD_BACKEND": "minio", "MINIO_URL": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidateMinio(t *testing.T) {
	cfg := &Config{
		UploadBackend:  "minio",
		WorkerInterval: time.Minute,
		Minio:          MinioConfig{URL: "localhost:9000", AccessKey: "a", SecretKey: "b"},
	}
	assert.NoError(t, cfg.Validate())
}
