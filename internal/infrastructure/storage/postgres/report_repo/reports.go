// Package report_repo provides the PostgreSQL reporting queries.
//
// Reports read committed rows only and never join uncommitted state, so
// every query here runs on the plain pool querier without locks.
package report_repo

import (
	"context"
	"fmt"

	"woodline/internal/core/types"
	"woodline/internal/domain/reports"
	"woodline/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
}

var _ reports.Repository = (*ReportRepo)(nil)

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

// SalesSummary returns headline numbers for the period. Totals count
// completed sales only; counts cover everything dated in the period.
func (r *ReportRepo) SalesSummary(ctx context.Context, p reports.Period) (*reports.SalesSummary, error) {
	querier := r.txManager.GetQuerier(ctx)

	summary := &reports.SalesSummary{Period: p}
	err := querier.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE status = 'completed'),
		        COUNT(*) FILTER (WHERE status = 'cancelled'),
		        COALESCE(SUM(total_uzs) FILTER (WHERE status = 'completed'), 0),
		        COALESCE(SUM(total_usd) FILTER (WHERE status = 'completed'), 0)
		 FROM doc_sales
		 WHERE deletion_mark = false AND date >= $1 AND date < $2`,
		p.From, p.To,
	).Scan(
		&summary.SalesCount,
		&summary.CompletedCount,
		&summary.CancelledCount,
		&summary.TotalUZS,
		&summary.TotalUSD,
	)
	if err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}

	err = querier.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount_uzs), 0), COALESCE(SUM(amount_usd), 0)
		 FROM doc_payments
		 WHERE created_at >= $1 AND created_at < $2`,
		p.From, p.To,
	).Scan(&summary.PaymentsUZS, &summary.PaymentsUSD)
	if err != nil {
		return nil, fmt.Errorf("payments summary: %w", err)
	}

	return summary, nil
}

// SalesByDay returns the completed-sales breakdown per calendar day.
func (r *ReportRepo) SalesByDay(ctx context.Context, p reports.Period) ([]reports.DayRow, error) {
	rows, err := r.txManager.GetQuerier(ctx).Query(ctx,
		`SELECT date_trunc('day', date) AS day,
		        COUNT(*),
		        COALESCE(SUM(total_uzs), 0)
		 FROM doc_sales
		 WHERE deletion_mark = false
		   AND status = 'completed'
		   AND date >= $1 AND date < $2
		 GROUP BY day
		 ORDER BY day`,
		p.From, p.To,
	)
	if err != nil {
		return nil, fmt.Errorf("sales by day: %w", err)
	}
	defer rows.Close()

	var result []reports.DayRow
	for rows.Next() {
		var row reports.DayRow
		if err := rows.Scan(&row.Date, &row.Count, &row.TotalUZS); err != nil {
			return nil, fmt.Errorf("scan day row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// TopProducts returns the best-selling products of the period by UZS
// takings. Service lines are excluded.
func (r *ReportRepo) TopProducts(ctx context.Context, p reports.Period, limit int) ([]reports.ProductRow, error) {
	rows, err := r.txManager.GetQuerier(ctx).Query(ctx,
		`SELECT i.product_id,
		        pr.name,
		        SUM(i.quantity)::bigint,
		        COALESCE(SUM(i.total_uzs), 0)
		 FROM doc_sale_items i
		 JOIN doc_sales s ON s.id = i.sale_id
		 JOIN cat_products pr ON pr.id = i.product_id
		 WHERE s.deletion_mark = false
		   AND s.status = 'completed'
		   AND s.date >= $1 AND s.date < $2
		   AND i.kind = 'product'
		 GROUP BY i.product_id, pr.name
		 ORDER BY SUM(i.total_uzs) DESC
		 LIMIT $3`,
		p.From, p.To, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}
	defer rows.Close()

	var result []reports.ProductRow
	for rows.Next() {
		var (
			row reports.ProductRow
			qty int64
		)
		if err := rows.Scan(&row.ProductID, &row.Name, &qty, &row.TotalUZS); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		row.Quantity = types.NewQuantityFromInt64Scaled(qty)
		result = append(result, row)
	}
	return result, rows.Err()
}

// SalesByCashier returns per-cashier completed takings for the period.
func (r *ReportRepo) SalesByCashier(ctx context.Context, p reports.Period) ([]reports.CashierRow, error) {
	rows, err := r.txManager.GetQuerier(ctx).Query(ctx,
		`SELECT u.id,
		        u.login,
		        COUNT(*),
		        COALESCE(SUM(s.total_uzs), 0)
		 FROM doc_sales s
		 JOIN sys_users u ON u.id = s.created_by::uuid
		 WHERE s.deletion_mark = false
		   AND s.status = 'completed'
		   AND s.date >= $1 AND s.date < $2
		 GROUP BY u.id, u.login
		 ORDER BY SUM(s.total_uzs) DESC`,
		p.From, p.To,
	)
	if err != nil {
		return nil, fmt.Errorf("sales by cashier: %w", err)
	}
	defer rows.Close()

	var result []reports.CashierRow
	for rows.Next() {
		var row reports.CashierRow
		if err := rows.Scan(&row.UserID, &row.Login, &row.Count, &row.TotalUZS); err != nil {
			return nil, fmt.Errorf("scan cashier row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// CustomerDebts returns customers whose completed sales exceed their
// payments by at least minDebtUZS. Debt is tracked in UZS, the currency
// sales are settled in.
func (r *ReportRepo) CustomerDebts(ctx context.Context, minDebtUZS types.Money) ([]reports.DebtRow, error) {
	rows, err := r.txManager.GetQuerier(ctx).Query(ctx,
		`WITH sold AS (
		     SELECT customer_id, SUM(total_uzs) AS sold_uzs
		     FROM doc_sales
		     WHERE deletion_mark = false AND status = 'completed'
		     GROUP BY customer_id
		 ), paid AS (
		     SELECT customer_id, SUM(amount_uzs) AS paid_uzs
		     FROM doc_payments
		     GROUP BY customer_id
		 )
		 SELECT c.id,
		        c.name,
		        c.phone,
		        sold.sold_uzs,
		        COALESCE(paid.paid_uzs, 0),
		        sold.sold_uzs - COALESCE(paid.paid_uzs, 0) AS debt_uzs
		 FROM sold
		 JOIN cat_customers c ON c.id = sold.customer_id
		 LEFT JOIN paid ON paid.customer_id = sold.customer_id
		 WHERE sold.sold_uzs - COALESCE(paid.paid_uzs, 0) >= $1
		 ORDER BY debt_uzs DESC`,
		minDebtUZS,
	)
	if err != nil {
		return nil, fmt.Errorf("customer debts: %w", err)
	}
	defer rows.Close()

	var result []reports.DebtRow
	for rows.Next() {
		var row reports.DebtRow
		if err := rows.Scan(&row.CustomerID, &row.Name, &row.Phone, &row.SoldUZS, &row.PaidUZS, &row.DebtUZS); err != nil {
			return nil, fmt.Errorf("scan debt row: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
