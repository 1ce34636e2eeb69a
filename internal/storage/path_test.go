package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFolder(t *testing.T) {
	require.Equal(t, "cu", SanitizeFolder("CU"))
	require.Equal(t, "coastal_university", SanitizeFolder("  Coastal   University "))
	require.Equal(t, "st._marys", SanitizeFolder("St. Mary's"))
	require.Equal(t, "", SanitizeFolder("大学"))
	require.Equal(t, "", SanitizeFolder("   "))
}

func TestBuildObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	key := BuildObjectKey("cu", KindCertificate, "my cert.pdf", now)
	require.Equal(t, "cu/1700000000000_certificate_my_cert.pdf", key)
}

func TestExtractKey(t *testing.T) {
	cases := []struct {
		name   string
		url    string
		bucket string
		want   string
	}{
		{
			name:   "path style",
			url:    "https://s3.eu-west-1.amazonaws.com/graduate-record/cu/123_certificate_cert.pdf",
			bucket: "graduate-record",
			want:   "cu/123_certificate_cert.pdf",
		},
		{
			name:   "virtual hosted style",
			url:    "https://graduate-record.s3.eu-west-1.amazonaws.com/cu/123_certificate_cert.pdf",
			bucket: "graduate-record",
			want:   "cu/123_certificate_cert.pdf",
		},
		{
			name:   "cdn with bucket segment",
			url:    "https://cdn.example/graduate-record/cu/123_certificate_cert.pdf",
			bucket: "graduate-record",
			want:   "cu/123_certificate_cert.pdf",
		},
		{
			name:   "query string stripped",
			url:    "https://cdn.example/graduate-record/cu/123_certificate_cert.pdf?signed=1",
			bucket: "graduate-record",
			want:   "cu/123_certificate_cert.pdf",
		},
		{
			name:   "bucket absent falls back to last segment",
			url:    "https://legacy.example/files/cert.pdf",
			bucket: "graduate-record",
			want:   "cert.pdf",
		},
		{
			name:   "empty url",
			url:    "",
			bucket: "graduate-record",
			want:   "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractKey(tc.url, tc.bucket))
		})
	}
}

func TestFileExtension(t *testing.T) {
	require.Equal(t, "pdf", FileExtension("cu/123_certificate_cert.pdf"))
	require.Equal(t, "png", FileExtension("cu/123_transcript_scan.png"))
	require.Equal(t, "pdf", FileExtension("cu/123_certificate_noext"))
	require.Equal(t, "pdf", FileExtension("cu/123_certificate_trailingdot."))
}
