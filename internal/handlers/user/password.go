package user

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"veltra_back_end/internal/cache"
	"veltra_back_end/internal/database"
	"veltra_back_end/internal/models"
	"veltra_back_end/internal/utils"
)

const resetTokenTTL = 30 * time.Minute

// ForgotPassword envoie un lien de réinitialisation par email.
// La réponse est identique que le compte existe ou non.
func ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email obligatoire"})
		return
	}

	user, err := getUserByEmail(input.Email)
	if err == nil {
		token, err := utils.GenerateResetToken()
		if err == nil {
			if err := cache.StoreResetToken(context.Background(), token, user.ID, resetTokenTTL); err == nil {
				baseURL := os.Getenv("BASE_URL")
				if baseURL == "" {
					baseURL = "http://localhost:8080"
				}
				resetURL := baseURL + "/reset-password?token=" + token
				go func() {
					if err := utils.SendPasswordResetEmail(user.Email, resetURL); err != nil {
						log.Printf("❌ Erreur envoi email de réinitialisation: %v", err)
					}
				}()
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Si ce compte existe, un email de réinitialisation a été envoyé"})
}

// ResetPassword applique un nouveau mot de passe via un token valide
func ResetPassword(c *gin.Context) {
	var input struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil || input.Token == "" || input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token et password sont obligatoires"})
		return
	}

	userID, err := cache.GetResetToken(context.Background(), input.Token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token invalide ou expiré"})
		return
	}

	parsed, err := uuid.Parse(userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token invalide ou expiré"})
		return
	}
	uid := gocql.UUID(parsed)

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur réinitialisation"})
		return
	}

	session, err := database.GetCatalogSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	if err := session.Query(`UPDATE users SET password = ?, updated_at = ? WHERE user_id = ?`,
		hashed, time.Now(), uid).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur réinitialisation"})
		return
	}

	cache.DeleteResetToken(context.Background(), input.Token)

	c.Set("user_id", userID)
	utils.LogAction(c, models.OpUpdate, models.EntityUser, userID,
		"Mot de passe réinitialisé", nil)

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe réinitialisé"})
}
