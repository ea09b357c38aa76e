package file_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/filevault/pkg/file"
)

// MockS3Client is a mock implementation of the S3Client interface
type MockS3Client struct {
	mock.Mock
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *MockS3Client) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

func newS3(t *testing.T, client *MockS3Client) *file.S3Storage {
	t.Helper()
	s, err := file.NewS3Storage(context.Background(), file.S3Config{
		Bucket: "vault",
		Region: "eu-central-1",
	}, file.WithS3Client(client))
	require.NoError(t, err)
	return s
}

func keyIs(key string) any {
	return mock.MatchedBy(func(in any) bool {
		switch v := in.(type) {
		case *s3.PutObjectInput:
			return *v.Key == key && *v.Bucket == "vault"
		case *s3.HeadObjectInput:
			return *v.Key == key && *v.Bucket == "vault"
		case *s3.DeleteObjectInput:
			return *v.Key == key && *v.Bucket == "vault"
		}
		return false
	})
}

func TestNewS3Storage_InvalidConfig(t *testing.T) {
	t.Parallel()
	_, err := file.NewS3Storage(context.Background(), file.S3Config{Region: "x"})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)
}

func TestS3Storage_URL(t *testing.T) {
	t.Parallel()

	t.Run("aws default", func(t *testing.T) {
		t.Parallel()
		s := newS3(t, &MockS3Client{})
		assert.Equal(t, "https://vault.s3.eu-central-1.amazonaws.com/files/a/b.txt", s.URL("/files/a/b.txt"))
	})

	t.Run("custom endpoint", func(t *testing.T) {
		t.Parallel()
		s, err := file.NewS3Storage(context.Background(), file.S3Config{
			Bucket:   "vault",
			Region:   "auto",
			Endpoint: "http://localhost:9000/",
		}, file.WithS3Client(&MockS3Client{}))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:9000/vault/k", s.URL("k"))
	})
}

func TestS3Storage_Put(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
			return *in.Key == "files/a/b.txt" && *in.ContentType == "text/plain" && *in.ContentLength == 5
		})).Return(&s3.PutObjectOutput{}, nil)

		obj, err := newS3(t, client).Put(context.Background(), "/files/a/b.txt", strings.NewReader("hello"), 5, "text/plain")
		require.NoError(t, err)
		assert.Equal(t, "files/a/b.txt", obj.Key)
		assert.Equal(t, int64(5), obj.Size)
		client.AssertExpectations(t)
	})

	t.Run("access denied", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("PutObject", mock.Anything, keyIs("k")).
			Return(nil, &smithy.GenericAPIError{Code: "AccessDenied"})

		_, err := newS3(t, client).Put(context.Background(), "k", strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, file.ErrAccessDenied)
	})

	t.Run("invalid key", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		_, err := newS3(t, client).Put(context.Background(), "../x", strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, file.ErrInvalidKey)
		client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything)
	})
}

func TestS3Storage_Delete(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("HeadObject", mock.Anything, keyIs("k")).Return(&s3.HeadObjectOutput{}, nil)
		client.On("DeleteObject", mock.Anything, keyIs("k")).Return(&s3.DeleteObjectOutput{}, nil)

		require.NoError(t, newS3(t, client).Delete(context.Background(), "k"))
		client.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("HeadObject", mock.Anything, keyIs("k")).Return(nil, &types.NotFound{})

		err := newS3(t, client).Delete(context.Background(), "k")
		assert.ErrorIs(t, err, file.ErrFileNotFound)
		client.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
	})

	t.Run("throttled", func(t *testing.T) {
		t.Parallel()
		client := &MockS3Client{}
		client.On("HeadObject", mock.Anything, keyIs("k")).Return(&s3.HeadObjectOutput{}, nil)
		client.On("DeleteObject", mock.Anything, keyIs("k")).
			Return(nil, &smithy.GenericAPIError{Code: "SlowDown"})

		err := newS3(t, client).Delete(context.Background(), "k")
		assert.ErrorIs(t, err, file.ErrServiceUnavailable)
	})
}

func TestS3Storage_Exists(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headErr error
		want    bool
		wantErr error
	}{
		{"present", nil, true, nil},
		{"absent", &types.NotFound{}, false, nil},
		{"canceled", context.Canceled, false, file.ErrOperationCanceled},
		{"other", errors.New("boom"), false, errors.New("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := &MockS3Client{}
			if tt.headErr == nil {
				client.On("HeadObject", mock.Anything, keyIs("k")).Return(&s3.HeadObjectOutput{}, nil)
			} else {
				client.On("HeadObject", mock.Anything, keyIs("k")).Return(nil, tt.headErr)
			}

			got, err := newS3(t, client).Exists(context.Background(), "k")
			assert.Equal(t, tt.want, got)
			switch {
			case tt.wantErr == nil:
				assert.NoError(t, err)
			case errors.Is(tt.wantErr, file.ErrOperationCanceled):
				assert.ErrorIs(t, err, file.ErrOperationCanceled)
			default:
				assert.Error(t, err)
			}
		})
	}
}
