package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest(t *testing.T) {
	cairo := time.FixedZone("EET", 2*60*60)

	req, err := buildRequest(argsT{StartDate: "2024-11-01", EndDate: "2024-11-05T12:00:00Z", ReceiverID: "222"}, cairo)
	require.NoError(t, err)
	require.NotNil(t, req.StartDate)
	require.NotNil(t, req.EndDate)
	assert.Equal(t, time.Date(2024, 10, 31, 22, 0, 0, 0, time.UTC), req.StartDate.UTC())
	assert.Equal(t, time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC), req.EndDate.UTC())
	assert.Equal(t, "222", req.ReceiverID)

	req, err = buildRequest(argsT{}, cairo)
	require.NoError(t, err)
	assert.Nil(t, req.StartDate)
	assert.Nil(t, req.EndDate)

	_, err = buildRequest(argsT{StartDate: "01/11/2024"}, cairo)
	assert.Error(t, err)
}
