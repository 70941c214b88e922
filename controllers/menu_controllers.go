package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/snytra/restaurant-app/models"
	"github.com/snytra/restaurant-app/utils"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetAllMenus
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	var menus []models.Menu

	result := mc.DB.Preload("Category").Find(&menus)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// CreateMenu
func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req struct {
		CategoryID  uint    `json:"category_id" binding:"required"`
		Name        string  `json:"name" binding:"required"`
		Price       float64 `json:"price" binding:"required"`
		Stock       int     `json:"stock"`
		Description string  `json:"description"`
		ImageURL    *string `json:"image_url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Price < 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
		return
	}

	// Pastikan kategori ada
	var category models.MenuCategory
	if err := mc.DB.First(&category, req.CategoryID).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category_id"))
		return
	}

	menu := models.Menu{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Price:       req.Price,
		Stock:       req.Stock,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}

	if err := mc.DB.Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

// GetMenuByID
func (mc *MenuController) GetMenuByID(c *gin.Context) {
	idStr := c.Param("menu_id")
	id, _ := strconv.Atoi(idStr)

	var menu models.Menu
	if err := mc.DB.Preload("Category").First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu detail", menu)
}

// GetMenuByCategory mengembalikan daftar menu berdasarkan kategori
// Endpoint: GET /menus/by-category?category=<id kategori>
func (mc *MenuController) GetMenuByCategory(c *gin.Context) {
	categoryIDStr := c.Query("category")
	if categoryIDStr == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("query parameter 'category' is required"))
		return
	}

	categoryID, err := strconv.Atoi(categoryIDStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category ID"))
		return
	}

	var menus []models.Menu
	if err := mc.DB.Preload("Category").
		Where("category_id = ?", categoryID).
		Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, fmt.Sprintf("List of menus for category ID: %d", categoryID), menus)
}

// UpdateMenu
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	idStr := c.Param("menu_id")
	id, _ := strconv.Atoi(idStr)

	var req struct {
		CategoryID  *uint    `json:"category_id"`
		Name        *string  `json:"name"`
		Price       *float64 `json:"price"`
		Stock       *int     `json:"stock"`
		Description *string  `json:"description"`
		ImageURL    *string  `json:"image_url"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var menu models.Menu
	if err := mc.DB.First(&menu, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}

	if req.CategoryID != nil {
		var category models.MenuCategory
		if err := mc.DB.First(&category, *req.CategoryID).Error; err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid category_id"))
			return
		}
		menu.CategoryID = *req.CategoryID
	}
	if req.Name != nil {
		menu.Name = *req.Name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			utils.RespondError(c, http.StatusBadRequest, errors.New("price cannot be negative"))
			return
		}
		menu.Price = *req.Price
	}
	if req.Stock != nil {
		menu.Stock = *req.Stock
	}
	if req.Description != nil {
		menu.Description = *req.Description
	}
	if req.ImageURL != nil {
		menu.ImageURL = req.ImageURL
	}

	if err := mc.DB.Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu updated successfully", menu)
}

// DeleteMenu
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	idStr := c.Param("menu_id")
	id, _ := strconv.Atoi(idStr)

	if err := mc.DB.Delete(&models.Menu{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"menu_id": id})
}
