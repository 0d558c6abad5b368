package paging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntSource(t *testing.T) {
	boom := errors.New("boom")
	src := IntSource[string](func(_ context.Context, p LoadParams[int]) ([]string, bool, error) {
		switch p.Key {
		case 1:
			return []string{"a", "b"}, true, nil
		case 2:
			return nil, true, nil
		case 3:
			return nil, false, nil
		default:
			return nil, true, boom
		}
	})
	ctx := context.Background()

	res, err := src.Load(ctx, Refresh(1))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Data)
	require.NotNil(t, res.NextKey)
	assert.Equal(t, 2, *res.NextKey)
	assert.False(t, res.IsNone())

	res, err = src.Load(ctx, Append(2))
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.Nil(t, res.NextKey)
	assert.False(t, res.IsNone())

	res, err = src.Load(ctx, Append(3))
	require.NoError(t, err)
	assert.True(t, res.IsNone())

	_, err = src.Load(ctx, Append(4))
	assert.ErrorIs(t, err, boom)
}

func TestLoadParams(t *testing.T) {
	assert.Equal(t, LoadParams[string]{Kind: LoadRefresh, Key: "a"}, Refresh("a"))
	assert.Equal(t, LoadParams[string]{Kind: LoadAppend, Key: "b"}, Append("b"))
	assert.Equal(t, "refresh", LoadRefresh.String())
	assert.Equal(t, "append", LoadAppend.String())
}

func TestNextKeyCopies(t *testing.T) {
	key := 5
	next := NextKey(key)
	key = 6
	assert.Equal(t, 5, *next)
}
