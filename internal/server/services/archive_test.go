package services

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"regexp"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicetasker/voicetasker/internal/common"
	sc "github.com/voicetasker/voicetasker/internal/server/config"
)

func newArchiveService() *ArchiveService {
	return NewArchiveService(&sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "voicetasker",
	})
}

func stubS3(t *testing.T) {
	t.Helper()
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := putObject
	origPresign := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		putObject = origPut
		presignGetObject = origPresign
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
}

func TestGetRandomStorageKey_Format(t *testing.T) {
	key := GetRandomStorageKey()
	matched, err := regexp.MatchString(`^recordings/\d{4}/\d{1,2}/\d{1,2}/[0-9a-f-]{36}$`, key)
	require.NoError(t, err)
	assert.True(t, matched, "unexpected key layout: %s", key)
	assert.NotEqual(t, key, GetRandomStorageKey())
}

func TestStoreDataURI_UploadsDecodedAudio(t *testing.T) {
	stubS3(t)

	var gotKey, gotContentType string
	var gotBody []byte
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		gotKey = *in.Key
		gotContentType = *in.ContentType
		var err error
		gotBody, err = io.ReadAll(in.Body)
		require.NoError(t, err)
		return &s3.PutObjectOutput{}, nil
	}

	svc := newArchiveService()
	payload := []byte("raw audio bytes")
	uri := "data:audio/webm;base64," + base64.StdEncoding.EncodeToString(payload)

	key, err := svc.StoreDataURI(context.Background(), uri)
	require.NoError(t, err)

	assert.Equal(t, gotKey, key)
	assert.Equal(t, "audio/webm", gotContentType)
	assert.Equal(t, payload, gotBody)
}

func TestStoreDataURI_RejectsNonAudio(t *testing.T) {
	stubS3(t)

	putCalled := false
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		putCalled = true
		return &s3.PutObjectOutput{}, nil
	}

	svc := newArchiveService()

	for _, uri := range []string{
		"data:video/mp4;base64,AAAA",
		"not a data uri",
		"data:audio/webm,missing-base64-marker",
		"data:audio/webm;base64,%%%not-base64%%%",
	} {
		_, err := svc.StoreDataURI(context.Background(), uri)
		assert.ErrorIs(t, err, common.ErrInvalidAudioPayload, "uri: %s", uri)
	}
	assert.False(t, putCalled, "invalid payloads must never reach storage")
}

func TestStoreDataURI_UploadError(t *testing.T) {
	stubS3(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return nil, errors.New("bucket gone")
	}

	svc := newArchiveService()
	uri := "data:audio/webm;base64," + base64.StdEncoding.EncodeToString([]byte("x"))

	_, err := svc.StoreDataURI(context.Background(), uri)
	require.Error(t, err)
}

func TestGetPresignedGetURL_ReturnsSignedURL(t *testing.T) {
	stubS3(t)

	var gotKey string
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		gotKey = *in.Key
		return &v4.PresignedHTTPRequest{URL: "http://signed.example/obj"}, nil
	}

	svc := newArchiveService()
	url, err := svc.GetPresignedGetURL(context.Background(), "recordings/2026/1/2/abc")
	require.NoError(t, err)

	assert.Equal(t, "http://signed.example/obj", url)
	assert.Equal(t, "recordings/2026/1/2/abc", gotKey)
}

func TestGetPresignedGetURL_SignError(t *testing.T) {
	stubS3(t)

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign failed")
	}

	svc := newArchiveService()
	_, err := svc.GetPresignedGetURL(context.Background(), "k")
	require.Error(t, err)
}
