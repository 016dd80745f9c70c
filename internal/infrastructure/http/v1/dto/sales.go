package dto

// ListSalesRequest for GET /sales.
type ListSalesRequest struct {
	PaginationRequest
	DateRangeRequest
	Status     string `form:"status"`
	CustomerID string `form:"customerId"`
	CreatedBy  string `form:"createdBy"`
}

// ListWorkshopTasksRequest for GET /workshop/tasks.
type ListWorkshopTasksRequest struct {
	PaginationRequest
	Status     string `form:"status"`
	AssigneeID string `form:"assigneeId"`
	SaleID     string `form:"saleId"`
}
