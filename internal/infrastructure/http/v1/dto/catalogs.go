package dto

import (
	"time"

	"woodline/internal/core/types"
	"woodline/internal/domain/catalogs/customer"
	"woodline/internal/domain/catalogs/product"
	"woodline/internal/domain/catalogs/servicetype"
	"woodline/internal/domain/catalogs/supplier"
	"woodline/internal/domain/catalogs/warehouse"
)

// --- Warehouses ---

// CreateWarehouseRequest for POST /catalog/warehouses.
type CreateWarehouseRequest struct {
	Code      string `json:"code"`
	Name      string `json:"name" binding:"required"`
	Type      string `json:"type"`
	Address   string `json:"address"`
	IsDefault bool   `json:"isDefault"`
}

// ToModel builds a new warehouse.
func (r CreateWarehouseRequest) ToModel() *warehouse.Warehouse {
	wh := warehouse.New(r.Code, r.Name, warehouse.Type(r.Type))
	wh.Address = r.Address
	wh.IsDefault = r.IsDefault
	return wh
}

// UpdateWarehouseRequest for PUT /catalog/warehouses/:id.
type UpdateWarehouseRequest struct {
	Name      string `json:"name" binding:"required"`
	Type      string `json:"type"`
	Address   string `json:"address"`
	IsActive  bool   `json:"isActive"`
	IsDefault bool   `json:"isDefault"`
	Version   int    `json:"version" binding:"required,min=1"`
}

// Apply copies the request onto an existing warehouse.
func (r UpdateWarehouseRequest) Apply(wh *warehouse.Warehouse) {
	wh.Name = r.Name
	wh.Type = warehouse.Type(r.Type)
	wh.Address = r.Address
	wh.IsActive = r.IsActive
	wh.IsDefault = r.IsDefault
	wh.Version = r.Version
}

// --- Products ---

// CreateProductRequest for POST /catalog/products.
type CreateProductRequest struct {
	Code              string         `json:"code"`
	Name              string         `json:"name" binding:"required"`
	Category          string         `json:"category"`
	Barcode           string         `json:"barcode"`
	Unit              string         `json:"unit"`
	PriceUZS          types.Money    `json:"priceUzs"`
	PriceUSD          types.Money    `json:"priceUsd"`
	MinPriceUZS       types.Money    `json:"minPriceUzs"`
	LowStockThreshold types.Quantity `json:"lowStockThreshold"`
}

// ToModel builds a new product.
func (r CreateProductRequest) ToModel() *product.Product {
	p := product.New(r.Code, r.Name)
	p.Category = r.Category
	p.Barcode = r.Barcode
	p.Unit = r.Unit
	p.PriceUZS = r.PriceUZS
	p.PriceUSD = r.PriceUSD
	p.MinPriceUZS = r.MinPriceUZS
	p.LowStockThreshold = r.LowStockThreshold
	return p
}

// UpdateProductRequest for PUT /catalog/products/:id.
type UpdateProductRequest struct {
	Name              string         `json:"name" binding:"required"`
	Category          string         `json:"category"`
	Barcode           string         `json:"barcode"`
	Unit              string         `json:"unit"`
	PriceUZS          types.Money    `json:"priceUzs"`
	PriceUSD          types.Money    `json:"priceUsd"`
	MinPriceUZS       types.Money    `json:"minPriceUzs"`
	LowStockThreshold types.Quantity `json:"lowStockThreshold"`
	IsActive          bool           `json:"isActive"`
	Version           int            `json:"version" binding:"required,min=1"`
}

// Apply copies the request onto an existing product.
func (r UpdateProductRequest) Apply(p *product.Product) {
	p.Name = r.Name
	p.Category = r.Category
	p.Barcode = r.Barcode
	p.Unit = r.Unit
	p.PriceUZS = r.PriceUZS
	p.PriceUSD = r.PriceUSD
	p.MinPriceUZS = r.MinPriceUZS
	p.LowStockThreshold = r.LowStockThreshold
	p.IsActive = r.IsActive
	p.Version = r.Version
}

// ListProductsRequest for GET /catalog/products.
type ListProductsRequest struct {
	PaginationRequest
	Search   string `form:"search"`
	Category string `form:"category"`
	IsActive *bool  `form:"isActive"`
}

// --- Customers ---

// CreateCustomerRequest for POST /catalog/customers.
type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// ToModel builds a new customer.
func (r CreateCustomerRequest) ToModel() *customer.Customer {
	c := customer.New(r.Name, r.Phone)
	c.Address = r.Address
	c.Notes = r.Notes
	return c
}

// UpdateCustomerRequest for PUT /catalog/customers/:id.
type UpdateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
	Version int    `json:"version" binding:"required,min=1"`
}

// Apply copies the request onto an existing customer.
func (r UpdateCustomerRequest) Apply(c *customer.Customer) {
	c.Name = r.Name
	c.Phone = r.Phone
	c.Address = r.Address
	c.Notes = r.Notes
	c.Version = r.Version
}

// --- Suppliers ---

// CreateSupplierRequest for POST /catalog/suppliers.
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone"`
	ContactPerson string `json:"contactPerson"`
	Notes         string `json:"notes"`
}

// ToModel builds a new supplier.
func (r CreateSupplierRequest) ToModel() *supplier.Supplier {
	sp := supplier.New(r.Name)
	sp.Phone = r.Phone
	sp.ContactPerson = r.ContactPerson
	sp.Notes = r.Notes
	return sp
}

// UpdateSupplierRequest for PUT /catalog/suppliers/:id.
type UpdateSupplierRequest struct {
	Name          string `json:"name" binding:"required"`
	Phone         string `json:"phone"`
	ContactPerson string `json:"contactPerson"`
	Notes         string `json:"notes"`
	Version       int    `json:"version" binding:"required,min=1"`
}

// Apply copies the request onto an existing supplier.
func (r UpdateSupplierRequest) Apply(sp *supplier.Supplier) {
	sp.Name = r.Name
	sp.Phone = r.Phone
	sp.ContactPerson = r.ContactPerson
	sp.Notes = r.Notes
	sp.Version = r.Version
}

// --- Service types ---

// CreateServiceTypeRequest for POST /catalog/service-types.
type CreateServiceTypeRequest struct {
	Name             string      `json:"name" binding:"required"`
	BasePriceUZS     types.Money `json:"basePriceUzs"`
	RequiresWorkshop bool        `json:"requiresWorkshop"`
}

// ToModel builds a new service type.
func (r CreateServiceTypeRequest) ToModel() *servicetype.ServiceType {
	return servicetype.New(r.Name, r.BasePriceUZS, r.RequiresWorkshop)
}

// UpdateServiceTypeRequest for PUT /catalog/service-types/:id.
type UpdateServiceTypeRequest struct {
	Name             string      `json:"name" binding:"required"`
	BasePriceUZS     types.Money `json:"basePriceUzs"`
	RequiresWorkshop bool        `json:"requiresWorkshop"`
	IsActive         bool        `json:"isActive"`
	Version          int         `json:"version" binding:"required,min=1"`
}

// Apply copies the request onto an existing service type.
func (r UpdateServiceTypeRequest) Apply(st *servicetype.ServiceType) {
	st.Name = r.Name
	st.BasePriceUZS = r.BasePriceUZS
	st.RequiresWorkshop = r.RequiresWorkshop
	st.IsActive = r.IsActive
	st.Version = r.Version
}

// --- Exchange rates ---

// SetRateRequest for POST /catalog/rates.
type SetRateRequest struct {
	RateUZS       types.Money `json:"rateUzs" binding:"required"`
	EffectiveDate time.Time   `json:"effectiveDate" time_format:"2006-01-02"`
}
