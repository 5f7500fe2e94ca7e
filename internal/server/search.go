package server

import (
	"net/http"
	"strings"

	searchdomain "github.com/chopchop-market/chopchop/internal/search/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) SearchProducts(c *gin.Context) {
	var query struct {
		Name      string `form:"name"`
		Category  string `form:"category"`
		Condition string `form:"condition"`
		Owner     string `form:"owner"`
		MinRating string `form:"min_rating"`
		MinPrice  string `form:"min_price"`
		MaxPrice  string `form:"max_price"`
		Page      int    `form:"page,default=0"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filter := searchdomain.Filter{
		Name:      strings.TrimSpace(query.Name),
		Category:  strings.TrimSpace(query.Category),
		Condition: strings.TrimSpace(query.Condition),
		Page:      query.Page,
	}

	if owner := strings.TrimSpace(query.Owner); owner != "" {
		ownerID, err := parseSnowflakeID(owner)
		if err != nil {
			AbortWithError(c, newValidationError("owner", "invalid_owner", "invalid owner id"))
			return
		}
		filter.OwnerID = ownerID
	}

	minRating, err := parseOptionalFloat(query.MinRating)
	if err != nil {
		AbortWithError(c, newValidationError("min_rating", "invalid_min_rating", "invalid minimum rating"))
		return
	}
	filter.MinRating = minRating

	minPrice, err := parseOptionalFloat(query.MinPrice)
	if err != nil {
		AbortWithError(c, newValidationError("min_price", "invalid_min_price", "invalid minimum price"))
		return
	}
	filter.MinPrice = minPrice

	maxPrice, err := parseOptionalFloat(query.MaxPrice)
	if err != nil {
		AbortWithError(c, newValidationError("max_price", "invalid_max_price", "invalid maximum price"))
		return
	}
	filter.MaxPrice = maxPrice

	items, err := s.searchSvc.Search(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items, "page": filter.Page})
}

func (s *Server) PopularProducts(c *gin.Context) {
	items, err := s.searchSvc.Populars(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": items})
}
