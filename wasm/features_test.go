package wasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeatures(t *testing.T) {
	require.False(t, FeaturesMVP.IsEnabled(FeatureMutableGlobals))
	require.True(t, FeaturesFinished.IsEnabled(FeatureMutableGlobals))
	require.True(t, FeaturesFinished.IsEnabled(FeatureMultiValue|FeatureBulkMemory))
	require.False(t, FeaturesFinished.IsEnabled(FeatureThreads))

	f := FeaturesMVP.Enable(FeatureSIMD)
	require.True(t, f.IsEnabled(FeatureSIMD))
	require.False(t, f.IsEnabled(FeatureExceptions))
}

func TestFeatures_RequireEnabled(t *testing.T) {
	require.NoError(t, FeaturesFinished.RequireEnabled(FeatureReferenceTypes))

	err := FeaturesMVP.RequireEnabled(FeatureThreads)
	require.Error(t, err)
	require.Contains(t, err.Error(), "threads")

	err = FeaturesMVP.RequireEnabled(FeatureSaturatingFloatToInt)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nontrapping-float-to-int-conversion")
}
