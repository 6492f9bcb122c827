package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryBuildsRepositoriesOnce(t *testing.T) {
	f := NewFactory(nil)

	repos := f.GetRepositories()
	require.NotNil(t, repos)
	assert.Same(t, repos, f.GetRepositories())
	assert.NotNil(t, repos.Product)
	assert.NotNil(t, repos.ShippingZone)
	assert.Equal(t, repos.User, f.GetUserRepository())
}
