package settings

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SettingsHandler contém os handlers HTTP das configurações do site
type SettingsHandler struct {
	repository Repository
}

// NewSettingsHandler cria uma nova instância de SettingsHandler
func NewSettingsHandler(repository Repository) *SettingsHandler {
	return &SettingsHandler{repository: repository}
}

// RegisterPublicRoutes registra as rotas públicas de leitura
func (h *SettingsHandler) RegisterPublicRoutes(r gin.IRouter) {
	r.GET("/settings/banners", h.GetBanners)
	r.GET("/settings/categories", h.GetCategories)
}

// RegisterAdminRoutes registra as rotas de escrita do console administrativo
func (h *SettingsHandler) RegisterAdminRoutes(r gin.IRouter) {
	r.PUT("/settings/banners", h.SetBanners)
	r.PUT("/settings/categories", h.SetCategories)
}

type stringListBody struct {
	Values []string `json:"values" binding:"required"`
}

// GetBanners lista as URLs dos banners da vitrine
func (h *SettingsHandler) GetBanners(c *gin.Context) {
	h.getList(c, BannerKey)
}

// GetCategories lista as categorias configuradas
func (h *SettingsHandler) GetCategories(c *gin.Context) {
	h.getList(c, CategoriesKey)
}

// SetBanners grava as URLs dos banners
func (h *SettingsHandler) SetBanners(c *gin.Context) {
	h.setList(c, BannerKey, false)
}

// SetCategories grava as categorias, descartando entradas vazias
func (h *SettingsHandler) SetCategories(c *gin.Context) {
	h.setList(c, CategoriesKey, true)
}

func (h *SettingsHandler) getList(c *gin.Context, key string) {
	values, err := h.repository.GetStringList(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}

func (h *SettingsHandler) setList(c *gin.Context, key string, trim bool) {
	var body stringListBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	values := body.Values
	if trim {
		cleaned := make([]string, 0, len(values))
		for _, v := range values {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				cleaned = append(cleaned, trimmed)
			}
		}
		values = cleaned
	}

	if err := h.repository.SetStringList(c.Request.Context(), key, values); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"values": values})
}
