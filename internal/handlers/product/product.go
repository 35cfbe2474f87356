package product

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"veltra_back_end/internal/cache"
	"veltra_back_end/internal/models"
	"veltra_back_end/internal/services"
	"veltra_back_end/internal/store"
	"veltra_back_end/internal/utils"
)

func CreateProduct(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := p.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := store.Products()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	// ✅ Génère un nouvel UUID pour le produit
	p.ID = gocql.TimeUUID()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.SyncSource = models.SyncSourceManual
	p.SyncStatus = models.SyncPending

	if err := products.Insert(c.Request.Context(), &p); err != nil {
		if err == store.ErrDuplicateSKU {
			c.JSON(http.StatusConflict, gin.H{"error": "Un produit avec ce SKU existe déjà"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création produit: " + err.Error()})
		return
	}

	utils.LogAction(c, models.OpCreate, models.EntityProduct, p.ID.String(),
		"Produit créé: "+p.Name+" ("+p.SKU+")", map[string]interface{}{"sku": p.SKU})

	cache.InvalidateProducts(context.Background())

	// 🔄 Indexation Elasticsearch
	go services.IndexProduct(p)

	c.JSON(http.StatusCreated, p)
}

func GetProducts(c *gin.Context) {
	ctx := context.Background()

	filter := models.ProductFilter{
		Category: c.Query("category"),
		Status:   models.ProductStatus(c.Query("status")),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Statut produit invalide: " + string(filter.Status)})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	// ✅ Le cache Redis ne sert que le listing complet
	unfiltered := filter.Category == "" && filter.Status == "" && limit <= 0
	if unfiltered {
		if cached, ok := cache.GetProductList(ctx); ok {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	products, err := store.Products()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	list, err := products.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits: " + err.Error()})
		return
	}
	if list == nil {
		list = []models.Product{}
	}

	// Pagination optionnelle : sans 'limit', tout le listing est renvoyé
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		total := len(list)
		start := (page - 1) * limit
		end := start + limit
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}
		c.JSON(http.StatusOK, gin.H{
			"products": list[start:end],
			"page":     page,
			"pages":    (total + limit - 1) / limit,
			"total":    total,
		})
		return
	}

	if unfiltered {
		cache.SetProductList(ctx, list)
	}

	c.JSON(http.StatusOK, list)
}

func GetProduct(c *gin.Context) {
	id, err := parseProductID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	products, err := store.Products()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	p, err := products.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// ✅ Génère les URLs signées MinIO pour les images
	signImages(c.Request.Context(), p)

	c.JSON(http.StatusOK, p)
}

func UpdateProduct(c *gin.Context) {
	id, err := parseProductID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	var input models.Product
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, err := store.Products()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	existing, err := products.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Écrasement complet des champs éditables
	existing.Name = input.Name
	existing.SKU = input.SKU
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Category = input.Category
	existing.Stock = input.Stock
	existing.Status = input.Status
	existing.Images = input.Images
	existing.Tags = input.Tags
	existing.Vendor = input.Vendor
	existing.UpdatedAt = time.Now()

	if err := existing.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := products.Update(c.Request.Context(), existing); err != nil {
		if err == store.ErrDuplicateSKU {
			c.JSON(http.StatusConflict, gin.H{"error": "Un produit avec ce SKU existe déjà"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit: " + err.Error()})
		return
	}

	utils.LogAction(c, models.OpUpdate, models.EntityProduct, existing.ID.String(),
		"Produit mis à jour: "+existing.Name+" ("+existing.SKU+")", map[string]interface{}{"sku": existing.SKU})

	cache.InvalidateProducts(context.Background())
	go services.IndexProduct(*existing)

	c.JSON(http.StatusOK, existing)
}

func DeleteProduct(c *gin.Context) {
	id, err := parseProductID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	products, err := store.Products()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := products.Delete(c.Request.Context(), id); err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression produit: " + err.Error()})
		return
	}

	cache.InvalidateProducts(context.Background())
	go services.RemoveProduct(id.String())

	// L'entrée d'audit est émise par le middleware AuditCriticalActions
	c.JSON(http.StatusOK, gin.H{"message": "Produit supprimé"})
}

// UploadImage dépose une image dans MinIO et l'ajoute au produit
func UploadImage(c *gin.Context) {
	id, err := parseProductID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant produit invalide"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier 'image' manquant"})
		return
	}

	products, err := store.Products()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	p, err := products.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 📤 Upload dans le bucket MinIO
	imageURL, err := services.UploadProductImage(c.Request.Context(), file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur upload image: " + err.Error()})
		return
	}

	p.Images = append(p.Images, models.ProductImage{URL: imageURL, Alt: c.PostForm("alt")})
	p.UpdatedAt = time.Now()

	if err := products.Update(c.Request.Context(), p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour produit: " + err.Error()})
		return
	}

	utils.LogAction(c, models.OpUpdate, models.EntityProduct, p.ID.String(),
		"Image ajoutée au produit: "+p.Name, map[string]interface{}{"image": imageURL})

	cache.InvalidateProducts(context.Background())

	c.JSON(http.StatusOK, p)
}

func SearchProducts(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paramètre 'q' manquant"})
		return
	}

	// 🔎 1️⃣ Recherche dans Elasticsearch (prioritaire)
	results, err := services.SearchProducts(query)
	if err == nil && len(results) > 0 {
		c.JSON(http.StatusOK, results)
		return
	}

	// 🔁 2️⃣ Fallback : scan du catalogue et filtre en mémoire
	products, err := store.Products()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	list, err := products.List(c.Request.Context(), models.ProductFilter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche: " + err.Error()})
		return
	}

	matched := []models.Product{}
	for _, p := range list {
		if containsIgnoreCase(p.Name, query) || containsIgnoreCase(p.Description, query) ||
			containsIgnoreCase(p.SKU, query) || containsTagsIgnoreCase(p.Tags, query) {
			matched = append(matched, p)
		}
	}

	c.JSON(http.StatusOK, matched)
}

func parseProductID(raw string) (gocql.UUID, error) {
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return gocql.UUID{}, err
	}
	return gocql.UUID(parsed), nil
}

func signImages(ctx context.Context, p *models.Product) {
	for i := range p.Images {
		if p.Images[i].URL == "" {
			continue
		}
		if signed, err := services.GenerateSignedURL(ctx, p.Images[i].URL, 24*time.Hour); err == nil {
			p.Images[i].URL = signed
		}
	}
}

// Helper pour recherche insensible à la casse
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func containsTagsIgnoreCase(tags []string, substr string) bool {
	for _, tag := range tags {
		if containsIgnoreCase(tag, substr) {
			return true
		}
	}
	return false
}
