package server

import (
	"net/http"

	purchasedomain "github.com/chopchop-market/chopchop/internal/purchase/domain"
	"github.com/gin-gonic/gin"
)

type purchaseItemRequest struct {
	ProductID string  `json:"product_id"`
	Count     int64   `json:"count"`
	Paid      float64 `json:"paid"`
}

type createPurchaseRequest struct {
	Items []purchaseItemRequest `json:"items"`
}

func (s *Server) CreatePurchase(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req createPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]purchasedomain.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := parseSnowflakeID(item.ProductID)
		if err != nil {
			AbortWithError(c, newValidationError("product_id", "invalid_product_id", "invalid product id"))
			return
		}
		items = append(items, purchasedomain.ItemRequest{
			ProductID: productID,
			Count:     item.Count,
			Paid:      item.Paid,
		})
	}

	id, err := s.purchaseSvc.Create(c.Request.Context(), principal, purchasedomain.CreateRequest{Items: items})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": id.String()}})
}

func (s *Server) GetPurchase(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid purchase id"))
		return
	}

	purchase, err := s.purchaseSvc.Get(c.Request.Context(), principal, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": purchase})
}

func (s *Server) ListMyPurchases(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	date, err := parseOptionalDate(c.Query("date"))
	if err != nil {
		AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
		return
	}

	purchases, err := s.purchaseSvc.ListMine(c.Request.Context(), principal, date)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": purchases})
}
