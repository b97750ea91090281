package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Defaults_FallBackWhenUnset(t *testing.T) {
	var rec Record

	assert.Equal(t, "USD", rec.DefaultFiat("USD"))
	assert.Equal(t, "bitcoin", rec.DefaultCrypto("bitcoin"))

	rec.SetDefaultFiat("EUR")
	rec.SetDefaultCrypto("ethereum")

	assert.Equal(t, "EUR", rec.DefaultFiat("USD"))
	assert.Equal(t, "ethereum", rec.DefaultCrypto("bitcoin"))
}

func Test_ToggleFavorite_AddsThenRemoves(t *testing.T) {
	var rec Record

	assert.True(t, rec.ToggleFavorite("bitcoin"))
	assert.True(t, rec.ToggleFavorite("EUR"))
	assert.Equal(t, []string{"bitcoin", "EUR"}, rec.Favorites)

	assert.False(t, rec.ToggleFavorite("bitcoin"))
	assert.Equal(t, []string{"EUR"}, rec.Favorites)
}
