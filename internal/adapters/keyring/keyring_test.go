package keyring

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	value  string
	err    error
	puts   int
	gets   int
	delets int
}

func (s *stubStore) Put(ctx context.Context, name string, value string) error {
	s.puts++
	return s.err
}

func (s *stubStore) Get(ctx context.Context, name string) (string, error) {
	s.gets++
	if s.err != nil {
		return "", s.err
	}
	return s.value, nil
}

func (s *stubStore) Delete(ctx context.Context, name string) error {
	s.delets++
	return s.err
}

func TestNewChainRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewChain(nil, &stubStore{})
	require.Error(t, err)

	_, err = NewChain(&stubStore{}, nil)
	require.Error(t, err)
}

func TestChainGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	primary := &stubStore{value: "from-pass"}
	fallback := &stubStore{value: "from-file"}
	chain, err := NewChain(primary, fallback)
	require.NoError(t, err)

	value, err := chain.Get(context.Background(), "dmu/steamweb-api-key")
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
	assert.Zero(t, fallback.gets)
}

func TestChainGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := &stubStore{err: ErrPassUnavailable}
	fallback := &stubStore{value: "from-file"}
	chain, err := NewChain(primary, fallback)
	require.NoError(t, err)

	value, err := chain.Get(context.Background(), "dmu/steamweb-api-key")
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestChainGetReturnsCombinedErrorWhenBothFail(t *testing.T) {
	t.Parallel()

	primary := &stubStore{err: errors.New("pass failed")}
	fallback := &stubStore{err: errors.New("file failed")}
	chain, err := NewChain(primary, fallback)
	require.NoError(t, err)

	_, err = chain.Get(context.Background(), "dmu/steamweb-api-key")
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass failed")
	assert.ErrorContains(t, err, "file failed")
}

func TestChainPutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	primary := &stubStore{err: errors.New("pass failed")}
	fallback := &stubStore{}
	chain, err := NewChain(primary, fallback)
	require.NoError(t, err)

	require.NoError(t, chain.Put(context.Background(), "dmu/steamweb-api-key", "secret"))
	assert.Equal(t, 1, fallback.puts)
}

func TestChainDeleteSkipsFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	primary := &stubStore{}
	fallback := &stubStore{}
	chain, err := NewChain(primary, fallback)
	require.NoError(t, err)

	require.NoError(t, chain.Delete(context.Background(), "dmu/steamweb-api-key"))
	assert.Zero(t, fallback.delets)
}

func TestChainDoesNotMaskContextCancellation(t *testing.T) {
	t.Parallel()

	primary := &stubStore{err: context.Canceled}
	fallback := &stubStore{value: "from-file"}
	chain, err := NewChain(primary, fallback)
	require.NoError(t, err)

	_, err = chain.Get(context.Background(), "dmu/steamweb-api-key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, fallback.gets)
}
