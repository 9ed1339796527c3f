package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_OK(t *testing.T) {
	p := Product{Name: "Widget", Quantity: 10, Price: 2.5}
	assert.NoError(t, p.Validate())
}

func TestValidate_ZeroQuantityAndPriceAllowed(t *testing.T) {
	p := Product{Name: "Widget"}
	assert.NoError(t, p.Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		p    Product
		want error
	}{
		{"empty name", Product{Quantity: 1, Price: 1}, ErrEmptyName},
		{"negative quantity", Product{Name: "W", Quantity: -1}, ErrNegativeQuantity},
		{"negative price", Product{Name: "W", Price: -0.01}, ErrNegativePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.p.Validate(), tt.want)
		})
	}
}

func TestValue(t *testing.T) {
	p := Product{Name: "Widget", Quantity: 10, Price: 2.5}
	assert.Equal(t, 25.0, p.Value())
}

func TestPersisted(t *testing.T) {
	assert.False(t, Product{}.Persisted())
	assert.True(t, Product{LocalID: 1}.Persisted())
}
