package sales

import (
	"github.com/jhoicas/tienda-erp-api/internal/application/dto"
	"github.com/jhoicas/tienda-erp-api/internal/domain/entity"
)

func toSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	out := &dto.SaleResponse{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		CustomerEmail: s.CustomerEmail,
		Date:          s.Date,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Total:         s.Total,
		SaleType:      s.SaleType,
		Channel:       s.Channel,
		Status:        s.Status,
		PaymentMethod: s.PaymentMethod,
		PaymentID:     s.PaymentID,
		PaidAt:        s.PaidAt,
		PriceListID:   s.PriceListID,
		CreatedAt:     s.CreatedAt,
	}
	for _, it := range s.Items {
		out.Items = append(out.Items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			LotID:       it.LotID,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			LineTotal:   it.LineTotal(),
		})
	}
	return out
}
