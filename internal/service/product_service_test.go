package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/sentinel/internal/domain"
)

func TestProductService_List(t *testing.T) {
	svc := NewProductService()

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Product{
		{ID: 1, Name: "Notebook"},
		{ID: 2, Name: "Mouse sem fio"},
		{ID: 3, Name: "Teclado Mecânico"},
	}, products)

	products[0].Name = "changed"
	again, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Notebook", again[0].Name)
}

func TestProductService_Get(t *testing.T) {
	svc := NewProductService()

	p, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Mouse sem fio", p.Name)

	_, err = svc.Get(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}
