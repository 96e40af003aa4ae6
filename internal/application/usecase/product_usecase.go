package usecase

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// Catalog operaciones de catálogo del motor de inventario que usa ProductUseCase.
type Catalog interface {
	CreateProduct(ctx context.Context, in inventory.CreateProductInput) (*entity.Product, error)
	GetProduct(ctx context.Context, id string) (*entity.Product, error)
	GetProductByCode(ctx context.Context, code string) (*entity.Product, error)
	ListProducts(ctx context.Context, q repository.ProductQuery) ([]*entity.Product, error)
	UpdateThresholds(ctx context.Context, id string, min, max int64, actor string) (*entity.Product, error)
	DeactivateProduct(ctx context.Context, id, actor string) error
}

// ProductUseCase casos de uso del catálogo expuestos por la API. El stock y el costo solo
// cambian vía movimientos.
type ProductUseCase struct {
	catalog Catalog
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(catalog Catalog) *ProductUseCase {
	return &ProductUseCase{catalog: catalog}
}

// Create crea un nuevo producto; el stock inicial queda registrado como ENTRY.
func (uc *ProductUseCase) Create(ctx context.Context, actor string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.catalog.CreateProduct(ctx, inventory.CreateProductInput{
		Code:         in.Code,
		Name:         in.Name,
		StockMin:     in.StockMin,
		StockMax:     in.StockMax,
		InitialStock: in.InitialStock,
		UnitCost:     in.UnitCost,
		Actor:        actor,
	})
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// GetByCode obtiene un producto por código.
func (uc *ProductUseCase) GetByCode(ctx context.Context, code string) (*dto.ProductResponse, error) {
	product, err := uc.catalog.GetProductByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, includeInactive bool, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.catalog.ListProducts(ctx, repository.ProductQuery{
		IncludeInactive: includeInactive,
		Limit:           page.Limit,
		Offset:          page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *ToProductResponse(p))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// UpdateThresholds actualiza los umbrales min/max.
func (uc *ProductUseCase) UpdateThresholds(ctx context.Context, id, actor string, in dto.UpdateThresholdsRequest) (*dto.ProductResponse, error) {
	product, err := uc.catalog.UpdateThresholds(ctx, id, in.StockMin, in.StockMax, actor)
	if err != nil {
		return nil, err
	}
	return ToProductResponse(product), nil
}

// Deactivate desactiva un producto; nunca se elimina físicamente.
func (uc *ProductUseCase) Deactivate(ctx context.Context, id, actor string) error {
	return uc.catalog.DeactivateProduct(ctx, id, actor)
}
