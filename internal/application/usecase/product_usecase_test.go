package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

type fakeCatalog struct {
	created   inventory.CreateProductInput
	lastQuery repository.ProductQuery
	products  []*entity.Product
	err       error
}

func (f *fakeCatalog) CreateProduct(_ context.Context, in inventory.CreateProductInput) (*entity.Product, error) {
	f.created = in
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Product{ID: "p-1", Code: in.Code, Name: in.Name, StockActual: in.InitialStock, Active: true}, nil
}

func (f *fakeCatalog) GetProduct(_ context.Context, id string) (*entity.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrUnknownProduct
}

func (f *fakeCatalog) GetProductByCode(_ context.Context, code string) (*entity.Product, error) {
	for _, p := range f.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, domain.ErrUnknownProduct
}

func (f *fakeCatalog) ListProducts(_ context.Context, q repository.ProductQuery) ([]*entity.Product, error) {
	f.lastQuery = q
	return f.products, nil
}

func (f *fakeCatalog) UpdateThresholds(_ context.Context, id string, min, max int64, _ string) (*entity.Product, error) {
	p, err := f.GetProduct(context.Background(), id)
	if err != nil {
		return nil, err
	}
	p.StockMin, p.StockMax = min, max
	return p, nil
}

func (f *fakeCatalog) DeactivateProduct(_ context.Context, id, _ string) error {
	p, err := f.GetProduct(context.Background(), id)
	if err != nil {
		return err
	}
	p.Active = false
	return nil
}

func TestProductUseCase_CreatePasaActorYCosto(t *testing.T) {
	cat := &fakeCatalog{}
	uc := NewProductUseCase(cat)
	cost := decimal.RequireFromString("12.50")

	out, err := uc.Create(context.Background(), "bodega-1", dto.CreateProductRequest{
		Code: "TOR-01", Name: "Tornillo", StockMin: 5, InitialStock: 40, UnitCost: &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, "p-1", out.ID)
	assert.Equal(t, int64(40), out.StockActual)
	assert.Equal(t, "bodega-1", cat.created.Actor)
	require.NotNil(t, cat.created.UnitCost)
	assert.True(t, cat.created.UnitCost.Equal(cost))
}

func TestProductUseCase_CreatePropagaError(t *testing.T) {
	uc := NewProductUseCase(&fakeCatalog{err: domain.ErrDuplicate})
	_, err := uc.Create(context.Background(), "a", dto.CreateProductRequest{Code: "X", Name: "X"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestProductUseCase_ListAplicaPaginaPorDefecto(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cat := &fakeCatalog{products: []*entity.Product{
		{ID: "a", Code: "A", CreatedAt: now},
		{ID: "b", Code: "B", CreatedAt: now},
	}}
	uc := NewProductUseCase(cat)

	out, err := uc.List(context.Background(), true, dto.PageRequest{Limit: 0, Offset: -3})
	require.NoError(t, err)
	assert.Len(t, out.Items, 2)
	assert.Equal(t, 20, out.Page.Limit)
	assert.Equal(t, 0, out.Page.Offset)
	assert.Equal(t, repository.ProductQuery{IncludeInactive: true, Limit: 20}, cat.lastQuery)

	_, err = uc.List(context.Background(), false, dto.PageRequest{Limit: 10000})
	require.NoError(t, err)
	assert.Equal(t, 500, cat.lastQuery.Limit)
}

func TestProductUseCase_UmbralesYDesactivacion(t *testing.T) {
	cat := &fakeCatalog{products: []*entity.Product{{ID: "a", Code: "A", Active: true}}}
	uc := NewProductUseCase(cat)
	ctx := context.Background()

	out, err := uc.UpdateThresholds(ctx, "a", "admin", dto.UpdateThresholdsRequest{StockMin: 3, StockMax: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.StockMin)
	assert.Equal(t, int64(9), out.StockMax)

	require.NoError(t, uc.Deactivate(ctx, "a", "admin"))
	got, err := uc.GetByCode(ctx, "A")
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrUnknownProduct)
}

func TestToProductResponse_Nil(t *testing.T) {
	assert.Nil(t, ToProductResponse(nil))
}
