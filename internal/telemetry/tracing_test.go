package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/inventory-api/internal/config"
)

func TestSetupTracing_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), &config.TelemetryConfig{ServiceName: "inventory-api"})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_WithEndpoint(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), &config.TelemetryConfig{
		ServiceName:  "inventory-api",
		OTLPEndpoint: "localhost:4318",
		Insecure:     true,
	})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
