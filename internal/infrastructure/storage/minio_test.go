package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/post-meeting-agent/pkg/config"
)

func TestPublicize(t *testing.T) {
	u, err := url.Parse("http://minio.internal:9000/bucket/calendar/a.ics?X-Amz-Signature=abc")
	require.NoError(t, err)

	assert.Equal(t, u.String(), publicize(u, ""))
	assert.Equal(t,
		"https://files.example.com/bucket/calendar/a.ics?X-Amz-Signature=abc",
		publicize(u, "https://files.example.com"),
	)
}

func TestGetFileURL_PresignsOffline(t *testing.T) {
	// a fixed region keeps presigning from asking the server for the bucket location
	m, err := newClient(&config.StorageConfig{
		Endpoint:        "minio.internal:9000",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		BucketName:      "post-meeting-agent",
		Region:          "us-east-1",
		PublicURL:       "https://files.example.com/",
		URLExpiry:       time.Hour,
	})
	require.NoError(t, err)

	got, err := m.GetFileURL(context.Background(), "calendar/sync-1234.ics")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "https://files.example.com/post-meeting-agent/calendar/sync-1234.ics?"), got)
	assert.Contains(t, got, "X-Amz-Expires=3600")
}

func TestNewClient_DefaultExpiry(t *testing.T) {
	m, err := newClient(&config.StorageConfig{Endpoint: "localhost:9000", BucketName: "b"})
	require.NoError(t, err)
	assert.Equal(t, DefaultURLExpiry, m.expiry)
}
