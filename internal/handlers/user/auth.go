package user

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"veltra_back_end/internal/database"
	"veltra_back_end/internal/models"
	"veltra_back_end/internal/utils"
)

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Email == "" || input.Password == "" || input.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email et password sont obligatoires"})
		return
	}

	// Email déjà pris ?
	if _, err := getUserByEmail(input.Email); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	now := time.Now()
	uid := gocql.TimeUUID()
	user := models.User{
		ID:        uid.String(),
		Email:     input.Email,
		Password:  hashed,
		Name:      input.Name,
		Role:      "user",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := insertUser(uid, user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création utilisateur"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.Set("user_id", user.ID)
	c.Set("email", user.Email)
	utils.LogAction(c, models.OpCreate, models.EntityUser, user.ID,
		"Compte créé: "+user.Email, nil)

	c.JSON(http.StatusCreated, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := getUserByEmail(input.Email)
	if err != nil {
		utils.LogFailedAction(c, models.OpError, models.EntityAuth, "",
			"Échec de connexion: "+input.Email, "utilisateur inconnu")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		utils.LogFailedAction(c, models.OpError, models.EntityAuth, user.ID,
			"Échec de connexion: "+input.Email, "mot de passe incorrect")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	c.Set("user_id", user.ID)
	c.Set("email", user.Email)
	utils.LogAction(c, models.OpInfo, models.EntityAuth, user.ID,
		"Connexion réussie: "+user.Email, nil)

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"userId": user.ID,
		"email":  user.Email,
		"name":   user.Name,
		"role":   user.Role,
	})
}

// getUserByEmail résout un utilisateur via la table users_by_email
func getUserByEmail(email string) (*models.User, error) {
	var uid gocql.UUID
	if err := database.GetPreparedGetUserByEmail().Bind(email).Scan(&uid); err != nil {
		return nil, err
	}
	return getUserByID(uid)
}

func getUserByID(uid gocql.UUID) (*models.User, error) {
	user := models.User{ID: uid.String()}
	if err := database.GetPreparedGetUserByID().Bind(uid).Scan(
		&user.Email, &user.Password, &user.Name, &user.Role,
		&user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func insertUser(uid gocql.UUID, user models.User) error {
	if err := database.GetPreparedInsertUser().Bind(
		uid, user.Email, user.Password, user.Name, user.Role,
		user.CreatedAt, user.UpdatedAt).Exec(); err != nil {
		return err
	}
	return database.GetPreparedInsertUserByEmail().Bind(user.Email, uid).Exec()
}
