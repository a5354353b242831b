package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchable_InitialState(t *testing.T) {
	var f Fetchable[[]string]
	require.Equal(t, LoadIdle, f.State)
	require.False(t, f.HasData())
	require.False(t, f.Stale())
	require.False(t, f.IsFetching())
}

func TestFetchable_SetData(t *testing.T) {
	var f Fetchable[int]
	f.SetFetching()
	require.True(t, f.IsFetching())
	f.SetData(100)
	require.Equal(t, LoadReady, f.State)
	require.True(t, f.HasData())
	require.False(t, f.IsFetching())
	require.NotZero(t, f.FetchedAt)
}

func TestFetchable_SetError_NoData(t *testing.T) {
	var f Fetchable[string]
	f.SetError(errors.New("boom"))
	require.Equal(t, LoadError, f.State)
	require.False(t, f.HasData())
	require.False(t, f.Stale())
	require.EqualError(t, f.Err, "boom")
}

func TestFetchable_SetError_PreservesStaleData(t *testing.T) {
	var f Fetchable[string]
	f.SetData("cached")
	f.SetError(errors.New("refresh failed"))
	require.Equal(t, LoadReady, f.State, "state should be preserved when prior data exists")
	require.Equal(t, "cached", f.Data)
	require.True(t, f.Stale())
	require.EqualError(t, f.Err, "refresh failed")

	f.SetData("fresh")
	require.False(t, f.Stale())
	require.NoError(t, f.Err)
}

func TestFetchable_Reset(t *testing.T) {
	var f Fetchable[[]int]
	f.SetData([]int{1, 2, 3})
	f.SetFetching()
	f.Reset()
	require.Equal(t, LoadIdle, f.State)
	require.Nil(t, f.Data)
	require.False(t, f.IsFetching())
	require.True(t, f.FetchedAt.IsZero())
}
