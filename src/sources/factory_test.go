package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct{ Adapter }

func stubConstructor() (Adapter, error) {
	return &stubAdapter{}, nil
}

func TestFactoryRegisterAndCreate(t *testing.T) {
	factory := NewFactory()
	require.NoError(t, factory.Register("stub", stubConstructor))

	assert.True(t, factory.IsRegistered("stub"))
	assert.False(t, factory.IsRegistered("other"))

	adapter, err := factory.Create("stub")
	require.NoError(t, err)
	assert.IsType(t, &stubAdapter{}, adapter)
}

func TestFactoryRejectsDuplicates(t *testing.T) {
	factory := NewFactory()
	require.NoError(t, factory.Register("stub", stubConstructor))

	err := factory.Register("stub", stubConstructor)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestFactoryRejectsNilConstructor(t *testing.T) {
	factory := NewFactory()
	assert.Error(t, factory.Register("stub", nil))
}

func TestFactoryUnknownSourceListsAvailable(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegistered)
	assert.Contains(t, err.Error(), "none available")

	require.NoError(t, factory.Register("alpha", stubConstructor))
	require.NoError(t, factory.Register("beta", stubConstructor))

	_, err = factory.Create("missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha, beta")
}

func TestFactorySourcesSorted(t *testing.T) {
	factory := NewFactory()
	require.NoError(t, factory.Register("zulu", stubConstructor))
	require.NoError(t, factory.Register("alpha", stubConstructor))
	assert.Equal(t, []string{"alpha", "zulu"}, factory.Sources())
}

func TestDefaultFactoryIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
