package server

import (
	"net/http"
	"strings"

	"github.com/chopchop-market/chopchop/internal/authorization"
	catalogdomain "github.com/chopchop-market/chopchop/internal/catalog/domain"
	"github.com/gin-gonic/gin"
)

type createProductRequest struct {
	Kind        string         `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Image       string         `json:"image"`
	Category    string         `json:"category"`
	Condition   string         `json:"condition"`
	SKU         *string        `json:"sku"`
	Stock       *int64         `json:"stock"`
	Metadata    map[string]any `json:"metadata"`
}

type updateProductRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       float64        `json:"price"`
	Image       string         `json:"image"`
	Category    string         `json:"category"`
	Condition   string         `json:"condition"`
	Discount    float64        `json:"discount"`
	Stock       *int64         `json:"stock"`
	Metadata    map[string]any `json:"metadata"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	kind, err := catalogdomain.ParseKind(req.Kind)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	action := authorization.ActionProductCreateSecondhand
	if kind == catalogdomain.KindVerified {
		action = authorization.ActionProductCreateVerified
	}
	if err := s.authzSvc.Authorize(c.Request.Context(), principal, authorization.ObjectProduct, action); err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := s.catalogSvc.Create(c.Request.Context(), principal, catalogdomain.CreateRequest{
		Kind:        string(kind),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		Condition:   req.Condition,
		SKU:         req.SKU,
		Stock:       req.Stock,
		Metadata:    req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": gin.H{"id": id.String(), "kind": kind}})
}

func (s *Server) GetProduct(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid product id"))
		return
	}

	product, err := s.catalogSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

func (s *Server) UpdateProduct(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid product id"))
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	err = s.catalogSvc.Update(c.Request.Context(), principal, catalogdomain.UpdateRequest{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		Category:    req.Category,
		Condition:   req.Condition,
		Discount:    req.Discount,
		Stock:       req.Stock,
		Metadata:    req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) DeleteProduct(c *gin.Context) {
	principal, ok := mustPrincipal(c)
	if !ok {
		return
	}

	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid product id"))
		return
	}

	if err := s.catalogSvc.Delete(c.Request.Context(), principal, id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
