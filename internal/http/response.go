package http

import (
	"time"

	"boot-shop/internal/domain"
)

// BootResponse is a boot with its attributes flattened next to the
// bookkeeping fields.
type BootResponse map[string]any

type OrderResponse struct {
	ID         string         `json:"id"`
	User       string         `json:"user"`
	Boots      []BootResponse `json:"boots"`
	TotalPrice float64        `json:"totalPrice"`
	CreatedAt  time.Time      `json:"createdAt"`
}

func bootToResponse(boot domain.Boot) BootResponse {
	resp := make(BootResponse, len(boot.Attributes)+4)
	for k, v := range boot.Attributes {
		resp[k] = v
	}
	resp["id"] = boot.ID
	if boot.Price != nil {
		resp["price"] = *boot.Price
	}
	resp["createdAt"] = boot.CreatedAt
	resp["updatedAt"] = boot.UpdatedAt
	return resp
}

func orderToResponse(order domain.Order) OrderResponse {
	boots := make([]BootResponse, len(order.Boots))
	for i := range order.Boots {
		boots[i] = bootToResponse(order.Boots[i])
	}
	return OrderResponse{
		ID:         order.ID,
		User:       order.UserID,
		Boots:      boots,
		TotalPrice: order.TotalPrice,
		CreatedAt:  order.CreatedAt,
	}
}
