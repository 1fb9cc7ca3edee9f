package milvus

import (
	"context"
	"errors"
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CaseLaw-Intelligence/internal/config"
	pkgerrors "github.com/turtacn/CaseLaw-Intelligence/pkg/errors"
)

type fakeConnClient struct {
	client.Client
	closed int
}

func (f *fakeConnClient) Close() error {
	f.closed++
	return nil
}

func TestNewClientRequiresAddr(t *testing.T) {
	_, err := NewClient(context.Background(), config.MilvusConfig{}, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeBadRequest))
}

func TestNewClientDialFailure(t *testing.T) {
	original := milvusNewClient
	defer func() { milvusNewClient = original }()
	milvusNewClient = func(ctx context.Context, conf client.Config) (client.Client, error) {
		return nil, errors.New("dial failed")
	}

	_, err := NewClient(context.Background(), config.MilvusConfig{Addr: "localhost:19530"}, nil)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.ErrCodeServiceUnavailable))
}

func TestNewClientSuccess(t *testing.T) {
	original := milvusNewClient
	defer func() { milvusNewClient = original }()
	fake := &fakeConnClient{}
	milvusNewClient = func(ctx context.Context, conf client.Config) (client.Client, error) {
		assert.Equal(t, "localhost:19530", conf.Address)
		assert.Equal(t, "caselaw", conf.DBName)
		return fake, nil
	}

	c, err := NewClient(context.Background(), config.MilvusConfig{Addr: "localhost:19530", Database: "caselaw"}, nil)
	require.NoError(t, err)
	require.NotNil(t, c.Milvus())

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, fake.closed)
}
