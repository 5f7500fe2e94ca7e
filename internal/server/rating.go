package server

import (
	"net/http"

	ratingdomain "github.com/chopchop-market/chopchop/internal/rating/domain"
	"github.com/gin-gonic/gin"
)

type submitRatingRequest struct {
	ProductID string  `json:"product_id"`
	Value     float64 `json:"value"`
}

func (s *Server) SubmitRating(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req submitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	productID, err := parseSnowflakeID(req.ProductID)
	if err != nil {
		AbortWithError(c, newValidationError("product_id", "invalid_product_id", "invalid product id"))
		return
	}

	err = s.ratingSvc.Submit(c.Request.Context(), principal, ratingdomain.SubmitRequest{
		ProductID: productID,
		Value:     req.Value,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) GetRating(c *gin.Context) {
	ownerID, err := parseSnowflakeID(c.Param("owner"))
	if err != nil {
		AbortWithError(c, newValidationError("owner", "invalid_owner", "invalid owner id"))
		return
	}
	productID, err := parseSnowflakeID(c.Param("product"))
	if err != nil {
		AbortWithError(c, newValidationError("product", "invalid_product", "invalid product id"))
		return
	}

	rating, err := s.ratingSvc.Get(c.Request.Context(), ownerID, productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rating})
}

func (s *Server) GetProductRating(c *gin.Context) {
	productID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid product id"))
		return
	}

	value, err := s.ratingSvc.ProductRating(c.Request.Context(), productID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"product_id": productID.String(), "rating": value}})
}
