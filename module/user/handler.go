package user

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"Alvin/logger"
	"Alvin/module/user/model"
	"Alvin/module/user/store"
	"Alvin/tools/security"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// HandlerLogin checks the credentials and issues a JWT for the websocket
// connect handshake.
func HandlerLogin(opts security.Options, users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}

		u, err := users.FindByUsername(c.Request.Context(), req.Username)
		if err != nil || !passwordMatch(u, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if u.Status != model.UserNormal {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "account disabled"})
			return
		}

		token, _, expireAt, err := security.Generate(opts, u.UserID)
		if err != nil {
			logger.Errorf("[user] token generation failed for %s: %v", u.UserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		_, _ = u.Collection().UpdateOne(c.Request.Context(),
			bson.M{"user_id": u.UserID},
			bson.M{"$set": bson.M{"last_login": time.Now().UTC()}})

		c.JSON(http.StatusOK, gin.H{
			"token":     token,
			"expire_at": expireAt.UTC().Format(time.RFC3339),
			"user": gin.H{
				"user_id":    u.UserID,
				"username":   u.Username,
				"avatar_url": u.AvatarURL,
			},
		})
	}
}

// HandlerCheck echoes the identity the auth middleware resolved. Lets a
// client validate a stored token before opening the websocket.
func HandlerCheck(users *store.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		u, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user_id":    u.UserID,
			"username":   u.Username,
			"avatar_url": u.AvatarURL,
		})
	}
}

func passwordMatch(u *model.User, password string) bool {
	sum := sha256.Sum256([]byte(password))
	hashed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(hashed), []byte(u.PasswordHash)) == 1
}
