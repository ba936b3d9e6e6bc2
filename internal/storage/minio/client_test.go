package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type putCall struct {
	bucket, key string
	data        []byte
	size        int64
	opts        minioLib.PutObjectOptions
}

// fakeObjects implements objectAPI without network.
type fakeObjects struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error
	madeBucket      string
	madeRegion      string

	puts   []putCall
	putErr error

	getRC  io.ReadCloser
	getErr error

	removeErr error

	statErr error
}

func (f *fakeObjects) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}

func (f *fakeObjects) MakeBucket(_ context.Context, bucket string, opts minioLib.MakeBucketOptions) error {
	f.madeBucket = bucket
	f.madeRegion = opts.Region
	return f.makeBucketErr
}

func (f *fakeObjects) PutObject(_ context.Context, bucket, key string, r io.Reader, size int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	if f.putErr != nil {
		return minioLib.UploadInfo{}, f.putErr
	}
	data, _ := io.ReadAll(r)
	f.puts = append(f.puts, putCall{bucket: bucket, key: key, data: data, size: size, opts: opts})
	return minioLib.UploadInfo{Bucket: bucket, Key: key, Size: int64(len(data))}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, _, _ string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	return f.getRC, f.getErr
}

func (f *fakeObjects) RemoveObject(_ context.Context, _, _ string, _ minioLib.RemoveObjectOptions) error {
	return f.removeErr
}

func (f *fakeObjects) StatObject(_ context.Context, _, _ string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return minioLib.ObjectInfo{}, f.statErr
}

func TestNewStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("bucket exists", func(t *testing.T) {
		api := &fakeObjects{bucketExists: true}
		s, err := newStorage(ctx, api, "epreuves", "")
		require.NoError(t, err)
		assert.Equal(t, "epreuves", s.bucket)
		assert.Empty(t, api.madeBucket)
	})

	t.Run("bucket created in region", func(t *testing.T) {
		api := &fakeObjects{}
		_, err := newStorage(ctx, api, "epreuves", "eu-west-3")
		require.NoError(t, err)
		assert.Equal(t, "epreuves", api.madeBucket)
		assert.Equal(t, "eu-west-3", api.madeRegion)
	})

	t.Run("existence check fails", func(t *testing.T) {
		s, err := newStorage(ctx, &fakeObjects{bucketExistsErr: errors.New("boom")}, "b", "")
		assert.Nil(t, s)
		assert.ErrorContains(t, err, "failed to ensure bucket exists")
	})

	t.Run("creation fails", func(t *testing.T) {
		s, err := newStorage(ctx, &fakeObjects{makeBucketErr: errors.New("denied")}, "b", "")
		assert.Nil(t, s)
		assert.ErrorContains(t, err, "failed to create bucket")
	})
}

func TestStorage_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeObjects{}
		s := &Storage{api: api, bucket: "b"}

		err := s.Upload(ctx, "epreuves/1.pdf", bytes.NewReader([]byte("%PDF")), 4, "application/pdf")

		require.NoError(t, err)
		require.Len(t, api.puts, 1)
		assert.Equal(t, "b", api.puts[0].bucket)
		assert.Equal(t, "epreuves/1.pdf", api.puts[0].key)
		assert.Equal(t, int64(4), api.puts[0].size)
		assert.Equal(t, "application/pdf", api.puts[0].opts.ContentType)
		assert.Equal(t, []byte("%PDF"), api.puts[0].data)
	})

	t.Run("error", func(t *testing.T) {
		s := &Storage{api: &fakeObjects{putErr: errors.New("put-fail")}, bucket: "b"}
		err := s.Upload(ctx, "k", bytes.NewReader(nil), 0, "")
		assert.ErrorContains(t, err, "failed to upload object")
	})
}

func TestStorage_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		s := &Storage{api: &fakeObjects{getRC: io.NopCloser(bytes.NewReader([]byte("abc")))}, bucket: "b"}
		rc, err := s.Download(ctx, "k")
		require.NoError(t, err)
		defer rc.Close()
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, "abc", string(data))
	})

	t.Run("error", func(t *testing.T) {
		s := &Storage{api: &fakeObjects{getErr: errors.New("get-fail")}, bucket: "b"}
		rc, err := s.Download(ctx, "k")
		assert.Nil(t, rc)
		assert.ErrorContains(t, err, "failed to get object")
	})
}

func TestStorage_Delete(t *testing.T) {
	ctx := context.Background()

	s := &Storage{api: &fakeObjects{}, bucket: "b"}
	assert.NoError(t, s.Delete(ctx, "k"))

	s = &Storage{api: &fakeObjects{removeErr: errors.New("remove-fail")}, bucket: "b"}
	assert.ErrorContains(t, s.Delete(ctx, "k"), "failed to delete object")
}

func TestStorage_Exists(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		statErr error
		want    bool
		wantErr string
	}{
		{name: "exists"},
		{name: "no such key", statErr: minioLib.ErrorResponse{Code: "NoSuchKey"}},
		{name: "head 404", statErr: minioLib.ErrorResponse{StatusCode: http.StatusNotFound}},
		{name: "other error", statErr: errors.New("stat-fail"), wantErr: "failed to stat object"},
	}
	tests[0].want = true

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Storage{api: &fakeObjects{statErr: tt.statErr}, bucket: "b"}
			ok, err := s.Exists(ctx, "k")
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
